package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestGetFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = zerolog.New(&buf)
	t.Cleanup(func() { globalLogger = prev })

	InfoLog(context.Background(), "generated %d rules", 3)
	require.Contains(t, buf.String(), `"message":"generated 3 rules"`)
}

func TestWithLoggerAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := base.WithContext(context.Background())
	ctx = WithLogger(ctx, map[string]interface{}{"template": "orders"})

	l := Get(ctx)
	l.Info().Msg("hello")
	require.Contains(t, buf.String(), `"template":"orders"`)

	buf.Reset()
	ErrorLog(ctx, "export failed", errors.New("boom"))
	require.Contains(t, buf.String(), `"error":"boom"`)
	require.Contains(t, buf.String(), `"message":"export failed"`)
}
