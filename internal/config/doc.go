// Package config defines the format-agnostic interfaces the application
// uses to obtain registry configuration. Concrete implementations, such as
// the HCL loader, live in separate packages.
package config
