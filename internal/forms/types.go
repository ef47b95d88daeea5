package forms

import (
	"context"
	"sort"
)

// Status is the validation status of a control.
type Status string

const (
	StatusValid    Status = "VALID"
	StatusInvalid  Status = "INVALID"
	StatusPending  Status = "PENDING"
	StatusDisabled Status = "DISABLED"
)

// UpdateOn selects when user input is committed to a control value.
type UpdateOn string

const (
	UpdateOnChange UpdateOn = "change"
	UpdateOnBlur   UpdateOn = "blur"
	UpdateOnSubmit UpdateOn = "submit"
)

// Errors maps a rule name to its failure details. A nil or empty mapping means valid.
type Errors map[string]any

// Keys returns the rule names in sorted order.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeErrors combines results from several validators. Later entries win on
// key collisions. It returns nil when nothing failed.
func MergeErrors(all ...Errors) Errors {
	var out Errors
	for _, errs := range all {
		for k, v := range errs {
			if out == nil {
				out = make(Errors)
			}
			out[k] = v
		}
	}
	return out
}

// ValidatorFn validates a control synchronously.
type ValidatorFn func(c Control) Errors

// AsyncValidatorFn validates a value snapshot, possibly blocking. A returned
// error is reported as an "async" rule failure. ctx is cancelled when a newer
// validation pass starts or the control is torn down.
type AsyncValidatorFn func(ctx context.Context, value any) (Errors, error)

// Scheduler runs blocking work off the caller's turn and delivers the
// returned continuation back onto it.
type Scheduler interface {
	Go(work func() func())
}

type setOptions struct {
	emitEvent bool
	onlySelf  bool
}

// SetOption tunes value and status updates.
type SetOption func(*setOptions)

// WithoutEvent suppresses value-change notifications.
func WithoutEvent() SetOption {
	return func(o *setOptions) { o.emitEvent = false }
}

// OnlySelf stops the update from propagating to ancestors.
func OnlySelf() SetOption {
	return func(o *setOptions) { o.onlySelf = true }
}

func resolve(opts []SetOption) setOptions {
	o := setOptions{emitEvent: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a control at construction.
type Option func(*control)

// WithValidators sets the synchronous validators.
func WithValidators(v ...ValidatorFn) Option {
	return func(c *control) { c.validators = v }
}

// WithAsyncValidators sets the asynchronous validators.
func WithAsyncValidators(v ...AsyncValidatorFn) Option {
	return func(c *control) { c.asyncValidators = v }
}

// WithAsyncChecks sets the checks of the async pass that read live form state.
func WithAsyncChecks(v ...ValidatorFn) Option {
	return func(c *control) { c.asyncChecks = v }
}

// WithUpdateOn sets the commit strategy for user input.
func WithUpdateOn(u UpdateOn) Option {
	return func(c *control) { c.updateOn = u }
}

// WithScheduler routes async validators through s.
func WithScheduler(s Scheduler) Option {
	return func(c *control) { c.scheduler = s }
}
