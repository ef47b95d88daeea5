package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dynaform/internal/app"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("all flags", func(t *testing.T) {
		// --- Arrange ---
		args := []string{
			"-fields", "fields.yaml",
			"-model", "model.json",
			"-config", "a.hcl", "-config", "conf.d",
			"-set", "name=Ada", "-set", "age=42",
			"-submit", "-dump",
			"-log-format", "JSON", "-log-level", "debug",
		}

		// --- Act ---
		cfg, shouldExit, err := Parse(args, &bytes.Buffer{})

		// --- Assert ---
		require.NoError(t, err)
		require.False(t, shouldExit)
		require.Equal(t, &app.Config{
			FieldsPath:  "fields.yaml",
			ModelPath:   "model.json",
			ConfigPaths: []string{"a.hcl", "conf.d"},
			Inputs:      []app.Input{{Key: "name", Value: "Ada"}, {Key: "age", Value: 42.0}},
			Submit:      true,
			Dump:        true,
			LogFormat:   "json",
			LogLevel:    "debug",
		}, cfg)
	})

	testCases := []struct {
		name     string
		args     []string
		wantPath string
	}{
		{name: "long flag", args: []string{"-fields", "a.json"}, wantPath: "a.json"},
		{name: "shorthand", args: []string{"-f", "b.json"}, wantPath: "b.json"},
		{name: "positional", args: []string{"c.json"}, wantPath: "c.json"},
		{name: "flag wins over positional", args: []string{"-f", "d.json", "e.json"}, wantPath: "d.json"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, _, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			require.Equal(t, tc.wantPath, cfg.FieldsPath)
			require.Equal(t, "text", cfg.LogFormat)
			require.Equal(t, "warn", cfg.LogLevel)
		})
	}
}

func TestParse_ExitsCleanly(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{}, {"-h"}} {
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse(args, out)
		require.NoError(t, err)
		require.True(t, shouldExit)
		require.Nil(t, cfg)
		require.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantMsg: "flag provided but not defined"},
		{name: "bad input", args: []string{"-set", "novalue", "f.json"}, wantMsg: "expected key=value"},
		{name: "bad log format", args: []string{"-log-format", "xml", "f.json"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "loud", "f.json"}, wantMsg: "invalid log-level"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			exitErr, ok := err.(*ExitError)
			require.True(t, ok, "expected ExitError, got %T", err)
			require.Equal(t, 2, exitErr.Code)
			require.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
