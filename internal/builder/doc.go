// Package builder turns a tree of field descriptors into a live field tree.
//
// # How It Works
//
// A build walks the tree once. Every registered extension is applied to
// every node, in registration order, through three phases:
//
//  1. **prePopulate:** wiring that must exist before the node's own
//     defaults are computed, such as the root options.
//  2. **onPopulate:** type defaults, ids, the form control, validators,
//     the default value and the compiled expressions. Direct children are
//     attached to the node here.
//  3. **postPopulate:** runs after every descendant has been populated,
//     so children always finish before their parent.
//
// Children are visited between onPopulate and postPopulate. fieldArray
// templates are never visited; array items are materialised on demand.
//
// A root build, a build of a node without a parent, additionally installs
// the shared options exactly once, then forces one full expression check
// that ignores the cache and one change detection pass. A subtree build
// only re-populates the given node.
//
// # Failure
//
// Configuration errors, a missing core extension or a cyclic extends chain,
// abort the build and are returned. Unknown types and failing expressions
// are contained to their node.
package builder
