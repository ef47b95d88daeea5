// Package cli turns command-line arguments into an app.Config. It owns the
// flag definitions, the usage text and the mapping of invalid arguments to
// exit codes, and nothing else.
package cli
