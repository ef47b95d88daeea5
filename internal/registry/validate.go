package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/dynaform/internal/ctxlog"
)

// Validate checks that every registered type resolves and that every
// wrapper a type declares is registered.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, name := range r.typeOrder {
		t, err := r.ResolveType(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, w := range t.Wrappers {
			if _, ok := r.wrappers[w]; !ok {
				errs = append(errs, fmt.Errorf("%w: type %q uses %q", ErrUnknownWrapper, name, w))
			}
		}
	}

	if len(errs) > 0 {
		logger.Debug("Registry validation failed.", "errors", len(errs))
		return errors.Join(errs...)
	}
	logger.Debug("Registry validation passed.", "types", len(r.types), "wrappers", len(r.wrappers), "validators", len(r.validators), "extensions", len(r.extensions))
	return nil
}
