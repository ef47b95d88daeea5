package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"

	"github.com/specialistvlad/dynaform/internal/ctxlog"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/form"
	"github.com/specialistvlad/dynaform/internal/loader"
)

// ErrInvalid is returned by Run when a submitted form does not validate.
var ErrInvalid = errors.New("submitted form is invalid")

// nodeSummary is the -dump view of one built node.
type nodeSummary struct {
	ID              string
	Key             string
	Type            string
	Hide            bool
	Wrappers        []string
	TemplateOptions map[string]any
	Children        []*nodeSummary
}

func summarize(f *field.Field) *nodeSummary {
	s := &nodeSummary{
		ID:              f.ID,
		Key:             f.KeyString(),
		Type:            f.Type,
		Hide:            f.Hide,
		Wrappers:        f.Wrappers,
		TemplateOptions: f.TemplateOptions,
	}
	for _, child := range f.FieldGroup {
		if child != nil {
			s.Children = append(s.Children, summarize(child))
		}
	}
	return s
}

// Run builds the form, applies the configured inputs and writes the JSON
// report to the output writer.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	fields, err := loader.LoadFields(a.config.FieldsPath)
	if err != nil {
		return fmt.Errorf("failed to load fields: %w", err)
	}
	model, err := loader.LoadModel(a.config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	a.logger.Debug("Inputs loaded.", "fields", len(fields), "model_keys", len(model))

	f := form.New(a.registry)
	defer f.Destroy()
	if err := f.SetFields(fields); err != nil {
		return err
	}
	if err := f.SetModel(model); err != nil {
		return err
	}
	if err := f.Init(ctx); err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}

	for _, in := range a.config.Inputs {
		a.logger.Debug("Applying input.", "key", in.Key)
		if err := f.Input(in.Key, in.Value); err != nil {
			return fmt.Errorf("failed to apply input: %w", err)
		}
	}
	if a.config.Submit {
		f.Submit()
	}
	if err := f.Options().Zone.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for pending validation: %w", err)
	}

	if a.config.Dump {
		spew.Fdump(a.logW, summarize(f.Root()))
	}

	report := f.Report()
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if _, err := fmt.Fprintln(a.outW, string(out)); err != nil {
		return err
	}
	a.logger.Info("Form evaluated.", "status", report.Status, "errors", len(report.Errors), "hidden", len(report.Hidden))

	if a.config.Submit && !report.Valid {
		return ErrInvalid
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}
