package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("returns the embedded logger", func(t *testing.T) {
		// --- Arrange ---
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := WithLogger(context.Background(), logger)

		// --- Act ---
		got := FromContext(ctx)
		got.Info("hello")

		// --- Assert ---
		require.Same(t, logger, got)
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("falls back to a discarding logger", func(t *testing.T) {
		// --- Act ---
		got := FromContext(context.Background())

		// --- Assert ---
		require.NotNil(t, got)
		assert.False(t, got.Enabled(context.Background(), slog.LevelError))
	})
}
