package config

import (
	"context"

	"github.com/specialistvlad/dynaform/internal/registry"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and returns one
	// registry configuration per source, in the order they apply.
	Load(ctx context.Context, paths ...string) ([]registry.ConfigOption, error)
}
