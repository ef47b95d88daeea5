package field

import (
	"fmt"

	"github.com/specialistvlad/dynaform/internal/modelpath"
)

// KeyPath parses the node's own key.
func (f *Field) KeyPath() (modelpath.Path, error) {
	if !f.HasKey() {
		return nil, nil
	}
	return modelpath.Parse(f.Key)
}

// FullPath resolves the node's key against the root model by prefixing the
// keys of every keyed ancestor.
func FullPath(f *Field) (modelpath.Path, error) {
	var p modelpath.Path
	for cur := f; cur != nil; cur = cur.Parent() {
		if !cur.HasKey() {
			continue
		}
		own, err := cur.KeyPath()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", cur.ID, err)
		}
		p = own.Join(p)
	}
	return p, nil
}

// RootModel returns the model of the owning tree.
func (f *Field) RootModel() map[string]any {
	if f.tree == nil {
		return nil
	}
	return f.tree.model
}

// Model returns the model this node's subtree operates on: the root model
// for the root, the sub-model named by its key for keyed groups, and the
// parent's model otherwise.
func (f *Field) Model() any {
	if f.tree == nil {
		return nil
	}
	parent := f.Parent()
	if parent == nil {
		return f.tree.model
	}
	if f.HasKey() && (f.IsGroup() || f.FieldArray != nil) {
		v, _ := GetFieldValue(f)
		return v
	}
	return parent.Model()
}

// GetFieldValue reads the node's value. Absent values report false.
func GetFieldValue(f *Field) (any, bool) {
	p, err := FullPath(f)
	if err != nil || len(p) == 0 {
		return nil, false
	}
	return modelpath.Get(f.RootModel(), p)
}

// AssignFieldValue writes v at the node's key, creating missing sub-models.
func AssignFieldValue(f *Field, v any) error {
	p, err := FullPath(f)
	if err != nil {
		return err
	}
	if len(p) == 0 {
		return modelpath.ErrEmptyKey
	}
	return modelpath.Set(f.RootModel(), p, v)
}

// UnsetFieldValue removes the node's value, reporting whether one was present.
func UnsetFieldValue(f *Field) bool {
	p, err := FullPath(f)
	if err != nil || len(p) == 0 {
		return false
	}
	return modelpath.Delete(f.RootModel(), p)
}

// KeyString renders the key for ids and logs. A lone index renders bare.
func (f *Field) KeyString() string {
	p, err := f.KeyPath()
	if err != nil || p == nil {
		if f.Key == nil {
			return ""
		}
		return fmt.Sprint(f.Key)
	}
	if len(p) == 1 && p[0].IsIndex() {
		return p[0].Name
	}
	return p.String()
}
