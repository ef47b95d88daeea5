// Package registry is the configuration service of the form engine.
//
// The Registry maps the names used in field descriptors (types such as
// "input", wrappers, validators, validation messages) to their Go
// implementations and defaults, holds the ordered extension list applied
// during tree population, and carries the global behaviour flags ("extras").
// Configuration is registered once per application, additively per feature
// module, then validated so descriptors and code stay in sync.
package registry
