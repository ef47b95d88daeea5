// Package field defines the field descriptor tree and the runtime state the
// build pipeline attaches to it.
//
// A Field is both the author-facing descriptor (decoded from JSON or YAML,
// or built in Go) and, once attached to a Tree, a live node. The Tree is the
// arena owning every node of one form: parent links are arena references, not
// pointers, and all nodes of a tree share a single Options value.
package field
