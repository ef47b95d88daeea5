// Package app wires the registry, the stock modules and the loaders into one
// runnable form evaluation. It knows nothing about flags or exit codes.
package app
