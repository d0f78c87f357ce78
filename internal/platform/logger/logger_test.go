package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/metalmindtech/mfn-api/internal/platform/logger"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := logger.WithLogger(context.Background(), custom)
	if got := logger.FromContext(ctx); got != custom {
		t.Error("expected the stored logger back from the context")
	}

	if got := logger.FromContext(context.Background()); got != slog.Default() {
		t.Error("expected the default logger for a bare context")
	}
}

func TestFromContextOrDefault(t *testing.T) {
	var buf bytes.Buffer
	stored := slog.New(slog.NewJSONHandler(&buf, nil))
	fallback := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := logger.WithLogger(context.Background(), stored)
	if got := logger.FromContextOrDefault(ctx, fallback); got != stored {
		t.Error("stored logger should win over the fallback")
	}

	if got := logger.FromContextOrDefault(context.Background(), fallback); got != fallback {
		t.Error("fallback logger should be used for a bare context")
	}

	if got := logger.FromContextOrDefault(context.Background(), nil); got != slog.Default() {
		t.Error("default logger should be used when there is no fallback")
	}
}
