package field

import (
	"log/slog"

	"github.com/specialistvlad/dynaform/internal/forms"
)

// Tree is the arena owning every node of one form.
type Tree struct {
	nodes   []*Field
	model   map[string]any
	form    *forms.Group
	options *Options
}

// NewTree creates an arena bound to a model, a root control group and the
// shared options. A nil model is replaced by an empty map.
func NewTree(model map[string]any, form *forms.Group, options *Options) *Tree {
	if model == nil {
		model = make(map[string]any)
	}
	if form == nil {
		form = forms.NewGroup()
	}
	if options == nil {
		options = NewOptions()
	}
	options.ParentForm = form
	return &Tree{model: model, form: form, options: options}
}

// Model returns the root model.
func (t *Tree) Model() map[string]any { return t.model }

// SetModel replaces the root model. A nil model is replaced by an empty map.
func (t *Tree) SetModel(m map[string]any) {
	if m == nil {
		m = make(map[string]any)
	}
	t.model = m
}

// Form returns the root control group.
func (t *Tree) Form() *forms.Group { return t.form }

// Options returns the shared options.
func (t *Tree) Options() *Options { return t.options }

// Nodes returns every attached node in attach order.
func (t *Tree) Nodes() []*Field {
	out := make([]*Field, 0, len(t.nodes))
	for _, n := range t.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Len reports the number of attached nodes.
func (t *Tree) Len() int { return len(t.Nodes()) }

// AttachRoot registers root as the tree's top node.
func (t *Tree) AttachRoot(root *Field) {
	t.attach(root, 0, 0)
}

// Reset tears down and forgets every node, ready for a full rebuild.
func (t *Tree) Reset() {
	for _, n := range t.nodes {
		if n == nil {
			continue
		}
		n.Teardown()
		n.tree, n.ref, n.parentRef = nil, 0, 0
	}
	t.nodes = nil
}

// Detach removes f and its descendants from the arena.
func (t *Tree) Detach(f *Field) {
	Walk(f, func(n *Field) {
		if n.tree != t || n.ref == 0 {
			return
		}
		n.Teardown()
		t.nodes[n.ref-1] = nil
		n.tree, n.ref, n.parentRef = nil, 0, 0
	})
}

func (t *Tree) attach(f *Field, parentRef, index int) {
	if f.tree != t || f.ref == 0 || f.ref > len(t.nodes) || t.nodes[f.ref-1] != f {
		t.nodes = append(t.nodes, f)
		f.ref = len(t.nodes)
	}
	f.tree = t
	f.parentRef = parentRef
	f.index = index
}

func (t *Tree) lookup(ref int) *Field {
	if ref <= 0 || ref > len(t.nodes) {
		return nil
	}
	return t.nodes[ref-1]
}

// AttachChild links child under f at index, sharing f's tree and options.
func (f *Field) AttachChild(child *Field, index int) {
	if f.tree == nil || child == nil {
		return
	}
	f.tree.attach(child, f.ref, index)
}

// Tree returns the owning arena, nil when detached.
func (f *Field) Tree() *Tree { return f.tree }

// Attached reports whether the node belongs to a tree.
func (f *Field) Attached() bool { return f.tree != nil }

// Parent returns the containing node through the arena, nil for the root.
func (f *Field) Parent() *Field {
	if f.tree == nil {
		return nil
	}
	return f.tree.lookup(f.parentRef)
}

// Root returns the top-most ancestor.
func (f *Field) Root() *Field {
	cur := f
	for p := cur.Parent(); p != nil; p = cur.Parent() {
		cur = p
	}
	return cur
}

// IsRoot reports whether f has no parent.
func (f *Field) IsRoot() bool { return f.Parent() == nil }

// Index returns the position within the parent's fieldGroup.
func (f *Field) Index() int { return f.index }

// Options returns the shared options, nil when detached.
func (f *Field) Options() *Options {
	if f.tree == nil {
		return nil
	}
	return f.tree.options
}

// Log returns the logger of the node's tree. It is safe on a nil node.
func (f *Field) Log() *slog.Logger {
	if f == nil {
		return discardLogger
	}
	return f.Options().Log()
}

// Control returns the bound control.
func (f *Field) Control() forms.Control { return f.FormControl }

// SetControl binds c to the node.
func (f *Field) SetControl(c forms.Control) { f.FormControl = c }

// ParentGroup returns the control group children of f register into: the
// node's own group when it has one, otherwise the nearest ancestor's.
func (f *Field) ParentGroup() *forms.Group {
	for cur := f.Parent(); cur != nil; cur = cur.Parent() {
		if g, ok := cur.FormControl.(*forms.Group); ok {
			return g
		}
	}
	if f.tree != nil {
		return f.tree.form
	}
	return nil
}
