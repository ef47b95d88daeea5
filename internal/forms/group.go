package forms

import (
	"github.com/specialistvlad/dynaform/internal/modelpath"
)

// Group is an ordered set of named child controls.
type Group struct {
	control
	names     []string
	children  map[string]Control
	submitted bool
}

// NewGroup creates an empty group.
func NewGroup(opts ...Option) *Group {
	g := &Group{children: make(map[string]Control)}
	g.init(g, opts)
	return g
}

// Register adds c under name unless a control already exists there, in which
// case the existing control is returned untouched.
func (g *Group) Register(name string, c Control) Control {
	if existing, ok := g.children[name]; ok {
		return existing
	}
	g.names = append(g.names, name)
	g.children[name] = c
	c.base().parent = g
	return c
}

// SetControl replaces the control under name and re-validates the group.
func (g *Group) SetControl(name string, c Control) {
	if old, ok := g.children[name]; ok {
		old.base().parent = nil
	} else {
		g.names = append(g.names, name)
	}
	g.children[name] = c
	c.base().parent = g
	g.updateValueAndValidity(setOptions{emitEvent: true})
}

// Remove detaches the control under name.
func (g *Group) Remove(name string) {
	c, ok := g.children[name]
	if !ok {
		return
	}
	c.base().parent = nil
	delete(g.children, name)
	for i, n := range g.names {
		if n == name {
			g.names = append(g.names[:i], g.names[i+1:]...)
			break
		}
	}
	g.updateValueAndValidity(setOptions{emitEvent: true})
}

// Control returns the direct child under name, or nil.
func (g *Group) Control(name string) Control {
	return g.children[name]
}

// Names returns child names in registration order.
func (g *Group) Names() []string {
	return append([]string(nil), g.names...)
}

// Get resolves a key path through nested groups, e.g. "address.city".
func (g *Group) Get(key any) Control {
	p, err := modelpath.Parse(key)
	if err != nil {
		return nil
	}
	return g.GetPath(p)
}

// GetPath resolves an already parsed path.
func (g *Group) GetPath(p modelpath.Path) Control {
	var cur Control = g
	for _, s := range p {
		grp, ok := cur.(*Group)
		if !ok {
			return nil
		}
		next := grp.children[s.Name]
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Value returns a map of enabled children's values. When every child is
// disabled all values are included.
func (g *Group) Value() any {
	out := make(map[string]any, len(g.names))
	all := g.allDisabled()
	for _, name := range g.names {
		c := g.children[name]
		if all || c.Enabled() {
			out[name] = c.Value()
		}
	}
	return out
}

// SetValue writes the entries of a map value into matching children.
func (g *Group) SetValue(v any, opts ...SetOption) {
	o := resolve(opts)
	m, _ := v.(map[string]any)
	for _, name := range g.names {
		if item, ok := m[name]; ok {
			g.children[name].SetValue(item, OnlySelf(), eventOption(o))
		}
	}
	g.updateValueAndValidity(o)
}

// Reset resets every child with the matching entry of v, or nil.
func (g *Group) Reset(v any, opts ...SetOption) {
	o := resolve(opts)
	m, _ := v.(map[string]any)
	for _, name := range g.names {
		g.children[name].Reset(m[name], OnlySelf(), eventOption(o))
	}
	g.touched = false
	g.dirty = false
	g.submitted = false
	g.updateValueAndValidity(o)
}

// Enable enables the group and all descendants.
func (g *Group) Enable(opts ...SetOption) {
	o := resolve(opts)
	for _, name := range g.names {
		g.children[name].Enable(OnlySelf(), eventOption(o))
	}
	g.enable(o)
}

// Disable disables the group and all descendants.
func (g *Group) Disable(opts ...SetOption) {
	o := resolve(opts)
	for _, name := range g.names {
		g.children[name].Disable(OnlySelf(), eventOption(o))
	}
	g.disable(o)
}

// UpdateTreeValidity re-validates every descendant group bottom-up, then g.
// Leaf controls keep their current status.
func (g *Group) UpdateTreeValidity(opts ...SetOption) {
	o := resolve(opts)
	for _, name := range g.names {
		if sub, ok := g.children[name].(*Group); ok {
			sub.UpdateTreeValidity(OnlySelf(), eventOption(o))
		}
	}
	g.updateValueAndValidity(o)
}

// Clear removes every child control.
func (g *Group) Clear() {
	for _, c := range g.children {
		c.base().parent = nil
	}
	g.names = nil
	g.children = make(map[string]Control)
	g.updateValueAndValidity(setOptions{})
}

// Submit commits pending input held by "submit" strategy descendants and
// marks the whole tree touched.
func (g *Group) Submit() {
	g.submitted = true
	g.walk(func(c Control) {
		if fc, ok := c.(*FieldControl); ok {
			fc.commitPending()
		}
		c.base().touched = true
	})
	g.touched = true
}

// Submitted reports whether Submit was called since the last Reset.
func (g *Group) Submitted() bool { return g.submitted }

// Attr exposes group state to expressions.
func (g *Group) Attr(name string) (any, bool) {
	switch name {
	case "submitted":
		return g.submitted, true
	case "controls":
		out := make(map[string]any, len(g.children))
		for k, c := range g.children {
			out[k] = c
		}
		return out, true
	}
	return g.attr(name)
}

// CancelAsync cancels the in-flight async validation of g and every
// descendant; late results are dropped.
func (g *Group) CancelAsync() {
	g.stopAsync()
	g.walk(func(c Control) { c.base().stopAsync() })
}

func (g *Group) walk(fn func(Control)) {
	for _, name := range g.names {
		c := g.children[name]
		fn(c)
		if sub, ok := c.(*Group); ok {
			sub.walk(fn)
		}
	}
}

func (g *Group) allDisabled() bool {
	if len(g.children) == 0 {
		return g.disabled
	}
	for _, c := range g.children {
		if c.Enabled() {
			return false
		}
	}
	return true
}

func (g *Group) childStatus() (invalid, pending bool) {
	for _, c := range g.children {
		switch c.Status() {
		case StatusInvalid:
			invalid = true
		case StatusPending:
			pending = true
		}
	}
	return invalid, pending
}

func eventOption(o setOptions) SetOption {
	return func(dst *setOptions) { dst.emitEvent = o.emitEvent }
}
