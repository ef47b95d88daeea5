// Package form is the host-facing facade over one field tree: it owns the
// inputs, rebuilds on change, runs the check cycle at the zone's stable
// point and publishes model changes.
package form

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/specialistvlad/dynaform/internal/builder"
	"github.com/specialistvlad/dynaform/internal/ctxlog"
	"github.com/specialistvlad/dynaform/internal/ext/validation"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/modelpath"
	"github.com/specialistvlad/dynaform/internal/notify"
	"github.com/specialistvlad/dynaform/internal/registry"
	"github.com/specialistvlad/dynaform/internal/zone"
)

// ErrNotInitialized is returned by operations that need a built tree.
var ErrNotInitialized = errors.New("form: not initialized")

// Form holds the inputs of one form and its live tree.
type Form struct {
	reg     *registry.Registry
	builder builder.Builder
	ctx     context.Context

	group   *forms.Group
	fields  []*field.Field
	model   map[string]any
	options *field.Options

	tree *field.Tree
	root *field.Field

	initialized  bool
	destroyed    bool
	scheduled    bool
	lastEmitted  map[string]any
	lastSnap     map[string]any
	fieldSub     *notify.Subscription
	modelChanges notify.Notifier[map[string]any]
}

// Option configures a Form.
type Option func(*Form)

// WithGroup binds the form to an existing root group.
func WithGroup(g *forms.Group) Option {
	return func(f *Form) { f.group = g }
}

// WithBuilder replaces the default builder.
func WithBuilder(b builder.Builder) Option {
	return func(f *Form) { f.builder = b }
}

// WithZone sets the zone coalescing value changes.
func WithZone(z *zone.Zone) Option {
	return func(f *Form) { f.options.Zone = z }
}

// New creates an uninitialized form. Inputs may be set before Init.
func New(reg *registry.Registry, opts ...Option) *Form {
	f := &Form{
		reg:     reg,
		builder: builder.New(reg),
		group:   forms.NewGroup(),
		model:   make(map[string]any),
		options: field.NewOptions(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.options.Zone == nil {
		f.options.Zone = zone.New()
	}
	return f
}

// Init performs the first build. Later input changes rebuild automatically.
func (f *Form) Init(ctx context.Context) error {
	if f.destroyed {
		return errors.New("form: destroyed")
	}
	f.ctx = ctx
	if err := f.rebuild(); err != nil {
		return err
	}
	f.initialized = true
	return nil
}

// SetFields replaces the descriptors and rebuilds from an empty root group.
func (f *Form) SetFields(fields []*field.Field) error {
	if f.immutable() {
		fields = field.CloneAll(fields)
	}
	f.fields = fields
	if !f.initialized {
		return nil
	}
	f.group.Clear()
	return f.rebuild()
}

// SetModel replaces the model and rebuilds. The last emitted map handed
// back unchanged is ignored; any other map is adopted even when equal.
func (f *Form) SetModel(model map[string]any) error {
	if f.initialized && f.isEcho(model) {
		return nil
	}
	if model == nil {
		model = make(map[string]any)
	}
	if f.immutable() {
		model = modelpath.CloneMap(model)
	}
	f.model = model
	if !f.initialized {
		return nil
	}
	return f.rebuild()
}

// SetOptions replaces the options and rebuilds.
func (f *Form) SetOptions(options *field.Options) error {
	if options == nil {
		options = field.NewOptions()
	}
	if options.Zone == nil && f.options != nil {
		options.Zone = f.options.Zone
	}
	f.options = options
	f.tree = nil
	if !f.initialized {
		return nil
	}
	return f.rebuild()
}

func (f *Form) immutable() bool {
	return f.reg.Extras().Immutable
}

func (f *Form) rebuild() error {
	logger := ctxlog.FromContext(f.context())
	f.unsubscribe()

	if f.tree == nil {
		f.tree = field.NewTree(f.model, f.group, f.options)
		f.root = &field.Field{}
	}
	f.tree.SetModel(f.model)
	f.root.FieldGroup = f.fields
	f.tree.AttachRoot(f.root)

	if err := f.builder.Build(f.context(), f.root); err != nil {
		logger.Error("Form build failed.", "error", err)
		return fmt.Errorf("form: build: %w", err)
	}
	f.model = f.tree.Model()

	f.subscribe()
	f.fireHooks()
	return nil
}

func (f *Form) context() context.Context {
	if f.ctx == nil {
		return context.Background()
	}
	return f.ctx
}

func (f *Form) subscribe() {
	opts := f.tree.Options()
	f.fieldSub = opts.FieldChanges.Subscribe(func(e field.Event) {
		if e.Type != field.EventValueChanges || f.scheduled {
			return
		}
		f.scheduled = true
		opts.Zone.OnStable(func() {
			f.scheduled = false
			f.settle()
		})
	})
}

func (f *Form) unsubscribe() {
	if f.fieldSub != nil {
		f.fieldSub.Unsubscribe()
		f.fieldSub = nil
	}
	f.scheduled = false
}

// settle re-checks expressions, then publishes the model.
func (f *Form) settle() {
	if f.destroyed || f.tree == nil {
		return
	}
	f.checkExpressions()

	out := f.tree.Model()
	if f.immutable() {
		out = modelpath.CloneMap(out)
	}
	f.lastEmitted = out
	f.lastSnap = modelpath.CloneMap(out)
	f.modelChanges.Emit(out)
}

// isEcho reports whether model is the map last emitted, not mutated since.
func (f *Form) isEcho(model map[string]any) bool {
	if f.lastEmitted == nil || model == nil {
		return false
	}
	if reflect.ValueOf(model).Pointer() != reflect.ValueOf(f.lastEmitted).Pointer() {
		return false
	}
	return modelpath.Equal(model, f.lastSnap)
}

func (f *Form) checkExpressions() {
	if opts := f.tree.Options(); opts.CheckExpressions != nil {
		opts.CheckExpressions(f.root, false)
	}
}

// fireHooks runs OnInit once per node, delayed for hidden nodes in lazy
// render mode, and OnChanges for nodes already initialized.
func (f *Form) fireHooks() {
	lazy := f.reg.Extras().LazyRender
	opts := f.tree.Options()
	field.Walk(f.root, func(n *field.Field) {
		if n == f.root || n.Hooks == nil {
			return
		}
		rt := n.Runtime()
		if rt.Initialized {
			if n.Hooks.OnChanges != nil {
				n.Hooks.OnChanges(n)
				opts.Emit(field.Event{Field: n, Type: field.EventHooks, Name: "onChanges"})
			}
			return
		}
		if lazy && n.Hidden() {
			return
		}
		rt.Initialized = true
		if n.Hooks.OnInit != nil {
			n.Hooks.OnInit(n)
			opts.Emit(field.Event{Field: n, Type: field.EventHooks, Name: "onInit"})
		}
		if n.Hooks.AfterViewInit != nil {
			n.Hooks.AfterViewInit(n)
			opts.Emit(field.Event{Field: n, Type: field.EventHooks, Name: "afterViewInit"})
		}
	})
}

// DetectChanges is the host change-detection tick. In
// changeDetectionCheck mode it re-checks every expression.
func (f *Form) DetectChanges() {
	if !f.initialized || f.destroyed {
		return
	}
	if f.reg.Extras().CheckExpressionOn == registry.CheckOnChangeDetection {
		f.checkExpressions()
	}
}

// Run executes fn inside a zone turn, so the changes it causes settle once.
func (f *Form) Run(fn func()) {
	f.options.Zone.Run(fn)
}

// Input feeds user input to the control bound at key.
func (f *Form) Input(key any, value any) error {
	if !f.initialized {
		return ErrNotInitialized
	}
	c := f.group.Get(key)
	if c == nil {
		return fmt.Errorf("form: no control at %v", key)
	}
	f.Run(func() {
		if fc, ok := c.(*forms.FieldControl); ok {
			fc.Input(value)
			return
		}
		c.SetValue(value)
	})
	return nil
}

// Submit marks the form submitted, commits submit-strategy input and re-checks.
func (f *Form) Submit() {
	if !f.initialized {
		return
	}
	f.Run(func() {
		f.group.Submit()
	})
	f.checkExpressions()
	if opts := f.tree.Options(); opts.DetectChanges != nil {
		opts.DetectChanges(f.root)
	}
}

// Reset restores model, or the initial snapshot when nil, and rebuilds.
func (f *Form) Reset(model map[string]any) error {
	if !f.initialized {
		return ErrNotInitialized
	}
	opts := f.tree.Options()
	if err := opts.ResetModel(model); err != nil {
		return err
	}
	f.model = f.tree.Model()
	return nil
}

// OnModelChange subscribes to settled model snapshots.
func (f *Form) OnModelChange(fn func(model map[string]any)) *notify.Subscription {
	return f.modelChanges.Subscribe(fn)
}

// Destroy fires OnDestroy hooks and tears down subscriptions and timers.
func (f *Form) Destroy() {
	if f.destroyed {
		return
	}
	f.destroyed = true
	f.unsubscribe()
	if f.group != nil {
		f.group.CancelAsync()
	}
	if f.tree != nil {
		field.Walk(f.root, func(n *field.Field) {
			if n.Hooks != nil && n.Hooks.OnDestroy != nil {
				n.Hooks.OnDestroy(n)
			}
		})
		f.tree.Reset()
	}
	f.modelChanges.Close()
}

// Root returns the synthetic root node, nil before Init.
func (f *Form) Root() *field.Field { return f.root }

// Group returns the root control group.
func (f *Form) Group() *forms.Group { return f.group }

// Fields returns the descriptors as held by the form.
func (f *Form) Fields() []*field.Field { return f.fields }

// Model returns the live model.
func (f *Form) Model() map[string]any { return f.model }

// Options returns the shared options.
func (f *Form) Options() *field.Options { return f.options }

// Control returns the control at key.
func (f *Form) Control(key any) forms.Control { return f.group.Get(key) }

// Field returns the first node bound to key.
func (f *Form) Field(key any) *field.Field {
	want, err := modelpath.Parse(key)
	if err != nil || f.root == nil {
		return nil
	}
	var found *field.Field
	field.Walk(f.root, func(n *field.Field) {
		if found != nil || !n.HasKey() {
			return
		}
		if p, err := field.FullPath(n); err == nil && p.Equal(want) {
			found = n
		}
	})
	return found
}

// ErrorMessages renders the displayable validation messages of n.
func (f *Form) ErrorMessages(n *field.Field) []validation.Message {
	return validation.ErrorMessages(f.reg, n)
}
