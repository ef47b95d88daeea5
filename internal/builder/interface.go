package builder

import (
	"context"

	"github.com/specialistvlad/dynaform/internal/field"
)

// Builder populates a field tree.
type Builder interface {
	// Build populates f and its descendants. f must be attached to a tree.
	Build(ctx context.Context, f *field.Field) error
}
