package forms

// FieldControl holds a single value.
type FieldControl struct {
	control
	value      any
	pending    any
	hasPending bool
}

// NewFieldControl creates a control seeded with value and validated once.
func NewFieldControl(value any, opts ...Option) *FieldControl {
	c := &FieldControl{value: value}
	c.init(c, opts)
	c.updateValueAndValidity(setOptions{onlySelf: true})
	return c
}

// Value returns the committed value.
func (c *FieldControl) Value() any { return c.value }

// SetValue commits v, re-validates and notifies subscribers.
func (c *FieldControl) SetValue(v any, opts ...SetOption) {
	c.value = v
	c.hasPending = false
	c.updateValueAndValidity(resolve(opts))
}

// Input records user input. With the "change" strategy it commits
// immediately; otherwise the value waits for Blur or a group Submit.
func (c *FieldControl) Input(v any) {
	c.dirty = true
	if c.parent != nil {
		c.parent.MarkAsDirty()
	}
	if c.UpdateOn() == UpdateOnChange {
		c.SetValue(v)
		return
	}
	c.pending = v
	c.hasPending = true
}

// Blur marks the control touched and commits pending input for the "blur" strategy.
func (c *FieldControl) Blur() {
	c.MarkAsTouched()
	if c.UpdateOn() == UpdateOnBlur && c.hasPending {
		c.SetValue(c.pending)
	}
}

// Reset sets v as the pristine, untouched value.
func (c *FieldControl) Reset(v any, opts ...SetOption) {
	c.touched = false
	c.dirty = false
	c.SetValue(v, opts...)
}

// Enable re-enables the control and re-validates it.
func (c *FieldControl) Enable(opts ...SetOption) { c.enable(resolve(opts)) }

// Disable excludes the control from validation and from its parent's value.
func (c *FieldControl) Disable(opts ...SetOption) { c.disable(resolve(opts)) }

// Attr exposes control state to expressions.
func (c *FieldControl) Attr(name string) (any, bool) { return c.attr(name) }

func (c *FieldControl) allDisabled() bool { return c.disabled }

func (c *FieldControl) childStatus() (bool, bool) { return false, false }

func (c *FieldControl) commitPending() {
	if c.hasPending && c.UpdateOn() == UpdateOnSubmit {
		c.SetValue(c.pending)
	}
}
