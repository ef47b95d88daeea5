package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dynaform/internal/ctxlog"
	"github.com/specialistvlad/dynaform/internal/ext"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/form"
	"github.com/specialistvlad/dynaform/internal/registry"
	"github.com/specialistvlad/dynaform/internal/zone"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Harness is one built form with a manual clock and captured logs.
type Harness struct {
	Registry *registry.Registry
	Form     *form.Form
	Clock    *ManualClock
	Zone     *zone.Zone
	Logs     *SafeBuffer
	Ctx      context.Context
}

// NewRegistry returns the built-in extensions plus the plain types "input",
// "number" (extending input) and "select", then applies configs in order.
func NewRegistry(configs ...registry.ConfigOption) *registry.Registry {
	r := ext.NewRegistry()
	r.RegisterType(registry.TypeOption{Name: "input"})
	r.RegisterType(registry.TypeOption{
		Name:           "number",
		Extends:        "input",
		DefaultOptions: &field.Field{TemplateOptions: map[string]any{"type": "number"}},
	})
	r.RegisterType(registry.TypeOption{Name: "select"})
	for _, cfg := range configs {
		r.RegisterConfig(cfg)
	}
	return r
}

// Build decodes fieldsJSON and initialises a form over model.
func Build(t *testing.T, r *registry.Registry, fieldsJSON string, model map[string]any) *Harness {
	t.Helper()
	fields, err := field.DecodeFields([]byte(fieldsJSON))
	require.NoError(t, err)
	return BuildFields(t, r, fields, model)
}

// BuildFields initialises a form over already decoded fields.
func BuildFields(t *testing.T, r *registry.Registry, fields []*field.Field, model map[string]any) *Harness {
	t.Helper()
	h := newHarness(r)
	require.NoError(t, h.Form.SetFields(fields))
	require.NoError(t, h.Form.SetModel(model))
	require.NoError(t, h.Form.Init(h.Ctx))
	t.Cleanup(func() {
		h.Form.Destroy()
		if os.Getenv("DYNAFORM_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), h.Logs.String())
		}
	})
	return h
}

func newHarness(r *registry.Registry) *Harness {
	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	clock := NewManualClock()
	z := zone.New(zone.WithClock(clock))
	return &Harness{
		Registry: r,
		Form:     form.New(r, form.WithZone(z)),
		Clock:    clock,
		Zone:     z,
		Logs:     logs,
		Ctx:      ctxlog.WithLogger(context.Background(), logger),
	}
}

// Check runs one expression check over the whole tree.
func (h *Harness) Check() {
	opts := h.Form.Root().Options()
	opts.CheckExpressions(h.Form.Root(), false)
}

// Model returns the live model.
func (h *Harness) Model() map[string]any { return h.Form.Model() }
