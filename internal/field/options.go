package field

import (
	"log/slog"

	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/modelpath"
	"github.com/specialistvlad/dynaform/internal/notify"
	"github.com/specialistvlad/dynaform/internal/zone"
)

// EventType classifies a field change event.
type EventType string

const (
	EventValueChanges EventType = "valueChanges"
	EventHooks        EventType = "hooks"
	EventExpression   EventType = "expressionChanges"
)

// Event is emitted on Options.FieldChanges.
type Event struct {
	Field *Field
	Value any
	Type  EventType
	// Name is the hook or expression path for hook and expression events.
	Name string
}

// Options is the state shared by every node of one tree. FormState is
// mutated in place, never replaced, while the tree is live.
type Options struct {
	FormState    map[string]any
	FieldChanges *notify.Notifier[Event]
	Zone         *zone.Zone
	ParentForm   *forms.Group
	// FormID identifies the tree in generated field ids.
	FormID int64
	// Logger is the build context's logger, set on every build.
	Logger *slog.Logger

	// ShowError decides whether a field's errors are displayed.
	ShowError func(f *Field) bool
	// ChangeDetector is the host hook asking for a node to be re-rendered.
	ChangeDetector func(f *Field)

	// Installed once by the build pipeline.
	Build              func(f *Field) error
	ResetModel         func(model map[string]any) error
	UpdateInitialValue func()
	CheckExpressions   func(f *Field, ignoreCache bool)
	DetectChanges      func(f *Field)

	initialModel   map[string]any
	hiddenForCheck []*Field
	installed      map[string]bool
}

// NewOptions creates options with an empty form state and change stream.
func NewOptions() *Options {
	return &Options{
		FormState:    make(map[string]any),
		FieldChanges: notify.New[Event](),
	}
}

var discardLogger = slog.New(slog.DiscardHandler)

// Log returns the tree logger, discarding output when none is set.
func (o *Options) Log() *slog.Logger {
	if o == nil || o.Logger == nil {
		return discardLogger
	}
	return o.Logger
}

// Once runs fn the first time name is seen, reporting whether it ran.
func (o *Options) Once(name string, fn func()) bool {
	if o.installed[name] {
		return false
	}
	if o.installed == nil {
		o.installed = make(map[string]bool)
	}
	o.installed[name] = true
	fn()
	return true
}

// InitialModel returns the snapshot used by ResetModel.
func (o *Options) InitialModel() map[string]any { return o.initialModel }

// SetInitialModel stores a deep copy of m as the reset snapshot.
func (o *Options) SetInitialModel(m map[string]any) {
	o.initialModel = modelpath.CloneMap(m)
}

// MarkHiddenForCheck queues f for hide-driven default and control handling.
func (o *Options) MarkHiddenForCheck(f *Field) {
	for _, queued := range o.hiddenForCheck {
		if queued == f {
			return
		}
	}
	o.hiddenForCheck = append(o.hiddenForCheck, f)
}

// TakeHiddenForCheck drains the hidden-state worklist.
func (o *Options) TakeHiddenForCheck() []*Field {
	out := o.hiddenForCheck
	o.hiddenForCheck = nil
	return out
}

// Emit publishes an event on FieldChanges.
func (o *Options) Emit(e Event) {
	if o.FieldChanges != nil {
		o.FieldChanges.Emit(e)
	}
}

// Attr exposes the options to expressions.
func (o *Options) Attr(name string) (any, bool) {
	if o == nil {
		return nil, false
	}
	switch name {
	case "formState":
		return o.FormState, true
	case "parentForm":
		if o.ParentForm == nil {
			return nil, true
		}
		return o.ParentForm, true
	}
	return nil, false
}
