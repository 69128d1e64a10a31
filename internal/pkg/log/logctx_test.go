package log

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntoFrom_RoundTrip(t *testing.T) {
	t.Parallel()

	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := Into(context.Background(), lg)
	require.Same(t, lg, From(ctx))
}

// Без привязанного логгера From отдаёт slog.Default().
func TestFrom_Fallback(t *testing.T) {
	t.Parallel()

	require.Same(t, slog.Default(), From(context.Background()))
}
