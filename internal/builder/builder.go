package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/dynaform/internal/ctxlog"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/registry"
)

var (
	// ErrMissingCore is returned when the registry lacks the core extension.
	ErrMissingCore = errors.New("builder: core extension is not registered")
	// ErrDetached is returned when building a node that belongs to no tree.
	ErrDetached = errors.New("builder: field is not attached to a tree")
)

// DefaultBuilder applies the registry's extensions.
type DefaultBuilder struct {
	reg *registry.Registry
}

// New creates a builder over r.
func New(r *registry.Registry) *DefaultBuilder {
	return &DefaultBuilder{reg: r}
}

// Build implements the Builder interface.
func (b *DefaultBuilder) Build(ctx context.Context, f *field.Field) error {
	if !b.reg.HasExtension(registry.CoreExtension) {
		return ErrMissingCore
	}
	if f == nil {
		return nil
	}
	tree := f.Tree()
	if tree == nil {
		return ErrDetached
	}
	logger := ctxlog.FromContext(ctx)

	if !f.IsRoot() {
		logger.Debug("Rebuilding subtree.", "id", f.ID)
		field.Walk(f, (*field.Field).Teardown)
		return b.build(f)
	}

	logger.Debug("Building field tree.", "fields", len(f.FieldGroup))
	tree.Reset()
	tree.AttachRoot(f)
	b.setOptions(ctx, f)

	if err := b.build(f); err != nil {
		return err
	}

	opts := tree.Options()
	if opts.CheckExpressions != nil {
		opts.CheckExpressions(f, true)
	}
	if opts.DetectChanges != nil {
		opts.DetectChanges(f)
	}
	logger.Debug("Field tree built.", "nodes", tree.Len(), "status", tree.Form().Status())
	return nil
}

func (b *DefaultBuilder) setOptions(ctx context.Context, root *field.Field) {
	opts := root.Options()
	opts.Logger = ctxlog.FromContext(ctx)
	opts.Once("build", func() {
		opts.Build = func(f *field.Field) error {
			return b.Build(ctx, f)
		}
	})
}

func (b *DefaultBuilder) build(f *field.Field) error {
	if f == nil {
		return nil
	}
	extensions := b.reg.Extensions()

	for _, e := range extensions {
		if e.PrePopulate == nil {
			continue
		}
		if err := e.PrePopulate(f); err != nil {
			return fmt.Errorf("%s prePopulate: %w", e.Name, err)
		}
	}
	for _, e := range extensions {
		if e.OnPopulate == nil {
			continue
		}
		if err := e.OnPopulate(f); err != nil {
			return fmt.Errorf("%s onPopulate: %w", e.Name, err)
		}
	}

	for _, child := range f.FieldGroup {
		if err := b.build(child); err != nil {
			return err
		}
	}

	for _, e := range extensions {
		if e.PostPopulate == nil {
			continue
		}
		if err := e.PostPopulate(f); err != nil {
			return fmt.Errorf("%s postPopulate: %w", e.Name, err)
		}
	}
	return nil
}

// BuildForm builds fields against model into group. A nil group, model or
// options is replaced by an empty one. The returned root node owns fields.
func BuildForm(ctx context.Context, b Builder, group *forms.Group, fields []*field.Field, model map[string]any, options *field.Options) (*field.Field, error) {
	tree := field.NewTree(model, group, options)
	root := &field.Field{FieldGroup: fields}
	tree.AttachRoot(root)
	if err := b.Build(ctx, root); err != nil {
		return nil, err
	}
	return root, nil
}
