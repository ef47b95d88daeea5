package forms

import (
	"context"

	"github.com/specialistvlad/dynaform/internal/modelpath"
	"github.com/specialistvlad/dynaform/internal/notify"
)

// Control is implemented by *FieldControl and *Group.
type Control interface {
	Value() any
	SetValue(v any, opts ...SetOption)
	Reset(v any, opts ...SetOption)

	Status() Status
	Valid() bool
	Invalid() bool
	Pending() bool
	Disabled() bool
	Enabled() bool
	Errors() Errors
	Enable(opts ...SetOption)
	Disable(opts ...SetOption)

	SetValidators(v ...ValidatorFn)
	SetAsyncValidators(v ...AsyncValidatorFn)
	SetAsyncChecks(v ...ValidatorFn)
	UpdateValueAndValidity(opts ...SetOption)

	Touched() bool
	MarkAsTouched()
	Dirty() bool
	MarkAsDirty()
	UpdateOn() UpdateOn

	Parent() *Group
	Root() Control
	Subscribe(fn func(value any)) *notify.Subscription
	Attr(name string) (any, bool)

	base() *control
}

// node is the internal contract each concrete control satisfies.
type node interface {
	Control
	allDisabled() bool
	childStatus() (invalid, pending bool)
}

// control holds the state shared by every concrete control.
type control struct {
	self   node
	parent *Group

	status          Status
	errors          Errors
	validators      []ValidatorFn
	asyncValidators []AsyncValidatorFn
	asyncChecks     []ValidatorFn
	asyncRun        int
	asyncPending    bool
	asyncCancel     context.CancelFunc
	scheduler       Scheduler

	disabled bool
	touched  bool
	dirty    bool
	updateOn UpdateOn

	changes notify.Notifier[any]
}

func (c *control) init(self node, opts []Option) {
	c.self = self
	c.status = StatusValid
	for _, opt := range opts {
		opt(c)
	}
}

func (c *control) base() *control { return c }

// Status returns the current status.
func (c *control) Status() Status { return c.status }

// Valid reports StatusValid.
func (c *control) Valid() bool { return c.status == StatusValid }

// Invalid reports StatusInvalid.
func (c *control) Invalid() bool { return c.status == StatusInvalid }

// Pending reports StatusPending.
func (c *control) Pending() bool { return c.status == StatusPending }

// Disabled reports StatusDisabled.
func (c *control) Disabled() bool { return c.status == StatusDisabled }

// Enabled is the inverse of Disabled.
func (c *control) Enabled() bool { return c.status != StatusDisabled }

// Errors returns the merged validator errors, nil when valid.
func (c *control) Errors() Errors { return c.errors }

// Parent returns the owning group, nil for a root control.
func (c *control) Parent() *Group { return c.parent }

// Root returns the top-most ancestor.
func (c *control) Root() Control {
	var cur Control = c.self
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}

// Touched reports whether the control has been blurred.
func (c *control) Touched() bool { return c.touched }

// MarkAsTouched flags the control and its ancestors as touched.
func (c *control) MarkAsTouched() {
	c.touched = true
	if c.parent != nil {
		c.parent.MarkAsTouched()
	}
}

// Dirty reports whether the value was changed through user input.
func (c *control) Dirty() bool { return c.dirty }

// MarkAsDirty flags the control and its ancestors as dirty.
func (c *control) MarkAsDirty() {
	c.dirty = true
	if c.parent != nil {
		c.parent.MarkAsDirty()
	}
}

// UpdateOn returns the commit strategy, inherited from the parent when unset.
func (c *control) UpdateOn() UpdateOn {
	if c.updateOn != "" {
		return c.updateOn
	}
	if c.parent != nil {
		return c.parent.UpdateOn()
	}
	return UpdateOnChange
}

// SetUpdateOn changes the commit strategy.
func (c *control) SetUpdateOn(u UpdateOn) { c.updateOn = u }

// SetScheduler routes async validators of this control and its descendants through s.
func (c *control) SetScheduler(s Scheduler) { c.scheduler = s }

// SetValidators replaces the synchronous validators. Call
// UpdateValueAndValidity for them to take effect.
func (c *control) SetValidators(v ...ValidatorFn) { c.validators = v }

// SetAsyncValidators replaces the asynchronous validators.
func (c *control) SetAsyncValidators(v ...AsyncValidatorFn) { c.asyncValidators = v }

// SetAsyncChecks replaces the checks run on the owning goroutine as part of
// the async pass. They only run once the synchronous validators pass.
func (c *control) SetAsyncChecks(v ...ValidatorFn) { c.asyncChecks = v }

// Validators returns the synchronous validators.
func (c *control) Validators() []ValidatorFn { return c.validators }

// AsyncValidators returns the asynchronous validators.
func (c *control) AsyncValidators() []AsyncValidatorFn { return c.asyncValidators }

// Subscribe registers fn for value changes.
func (c *control) Subscribe(fn func(value any)) *notify.Subscription {
	return c.changes.Subscribe(fn)
}

// UpdateValueAndValidity re-runs validators and recomputes status, then does
// the same for every ancestor unless OnlySelf is given.
func (c *control) UpdateValueAndValidity(opts ...SetOption) {
	c.updateValueAndValidity(resolve(opts))
}

func (c *control) updateValueAndValidity(o setOptions) {
	c.stopAsync()
	if c.self.allDisabled() {
		c.status = StatusDisabled
		c.errors = nil
	} else {
		c.errors = c.runValidators()
		c.status = c.calculateStatus()
		if c.status == StatusValid && (len(c.asyncValidators) > 0 || len(c.asyncChecks) > 0) {
			c.runAsyncValidators()
		}
	}

	if o.emitEvent {
		c.changes.Emit(c.self.Value())
	}
	if c.parent != nil && !o.onlySelf {
		c.parent.updateValueAndValidity(o)
	}
}

func (c *control) runValidators() Errors {
	var all []Errors
	for _, v := range c.validators {
		if v == nil {
			continue
		}
		all = append(all, v(c.self))
	}
	return MergeErrors(all...)
}

func (c *control) calculateStatus() Status {
	if c.self.allDisabled() {
		return StatusDisabled
	}
	if len(c.errors) > 0 {
		return StatusInvalid
	}
	invalid, pending := c.self.childStatus()
	switch {
	case invalid:
		return StatusInvalid
	case pending || c.asyncPending:
		return StatusPending
	}
	return StatusValid
}

// runAsyncValidators runs the async checks in place, then hands the blocking
// validators a snapshot of the value. Only the continuation touches the
// control again, and only if no newer pass started meanwhile.
func (c *control) runAsyncValidators() {
	var inline []Errors
	for _, v := range c.asyncChecks {
		if v != nil {
			inline = append(inline, v(c.self))
		}
	}
	if len(c.asyncValidators) == 0 {
		c.errors = MergeErrors(inline...)
		c.status = c.calculateStatus()
		return
	}

	c.asyncPending = true
	c.status = StatusPending
	run := c.asyncRun
	value := modelpath.Clone(c.self.Value())
	validators := append([]AsyncValidatorFn(nil), c.asyncValidators...)
	ctx, cancel := context.WithCancel(context.Background())
	c.asyncCancel = cancel

	work := func() func() {
		all := append([]Errors(nil), inline...)
		for _, v := range validators {
			errs, err := v(ctx, value)
			if err != nil {
				errs = Errors{"async": err.Error()}
			}
			all = append(all, errs)
		}
		merged := MergeErrors(all...)
		return func() {
			cancel()
			if run != c.asyncRun {
				return
			}
			c.asyncCancel = nil
			c.asyncPending = false
			c.errors = merged
			c.refreshStatus()
		}
	}

	if s := c.findScheduler(); s != nil {
		s.Go(work)
		return
	}
	work()()
}

// stopAsync discards the in-flight async pass and cancels its context.
func (c *control) stopAsync() {
	c.asyncRun++
	c.asyncPending = false
	if c.asyncCancel != nil {
		c.asyncCancel()
		c.asyncCancel = nil
	}
}

// refreshStatus recomputes status without re-running validators, bubbling up.
func (c *control) refreshStatus() {
	c.status = c.calculateStatus()
	if c.parent != nil {
		c.parent.refreshStatus()
	}
}

func (c *control) findScheduler() Scheduler {
	for cur := c; cur != nil; {
		if cur.scheduler != nil {
			return cur.scheduler
		}
		if cur.parent == nil {
			return nil
		}
		cur = &cur.parent.control
	}
	return nil
}

func (c *control) disable(o setOptions) {
	c.disabled = true
	c.stopAsync()
	c.errors = nil
	c.status = StatusDisabled
	if o.emitEvent {
		c.changes.Emit(c.self.Value())
	}
	if c.parent != nil && !o.onlySelf {
		c.parent.updateValueAndValidity(setOptions{emitEvent: o.emitEvent})
	}
}

func (c *control) enable(o setOptions) {
	c.disabled = false
	c.updateValueAndValidity(setOptions{emitEvent: o.emitEvent, onlySelf: true})
	if c.parent != nil && !o.onlySelf {
		c.parent.updateValueAndValidity(setOptions{emitEvent: o.emitEvent})
	}
}

// attr exposes the common state to expressions.
func (c *control) attr(name string) (any, bool) {
	switch name {
	case "value":
		return c.self.Value(), true
	case "status":
		return string(c.status), true
	case "valid":
		return c.Valid(), true
	case "invalid":
		return c.Invalid(), true
	case "pending":
		return c.Pending(), true
	case "disabled":
		return c.Disabled(), true
	case "enabled":
		return c.Enabled(), true
	case "errors":
		if c.errors == nil {
			return nil, true
		}
		return map[string]any(c.errors), true
	case "touched":
		return c.touched, true
	case "untouched":
		return !c.touched, true
	case "dirty":
		return c.dirty, true
	case "pristine":
		return !c.dirty, true
	case "parent":
		if c.parent == nil {
			return nil, true
		}
		return c.parent, true
	}
	return nil, false
}
