package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerSelectsHandlerByFormat(t *testing.T) {
	jsonLogger := NewLogger(&Config{LogFormat: "json"})
	require.True(t, jsonLogger.Handler().Enabled(context.Background(), slog.LevelInfo))
	_, isJSON := jsonLogger.Handler().(*slog.JSONHandler)
	require.True(t, isJSON)

	textLogger := NewLogger(&Config{LogFormat: "pretty"})
	_, isText := textLogger.Handler().(*slog.TextHandler)
	require.True(t, isText)

	// Nil config must not panic.
	require.NotNil(t, NewLogger(nil))
}
