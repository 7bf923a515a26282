package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Stdout(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewProvider(context.Background(), ExporterStdout, &buf, "1.2.3")
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "tool.plate_detect")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Name":"tool.plate_detect"`)
	assert.Contains(t, out, ServiceName)
	assert.Contains(t, out, "1.2.3")
}

func TestNewProvider_None(t *testing.T) {
	for _, exporter := range []string{ExporterNone, ""} {
		tp, err := NewProvider(context.Background(), exporter, nil, "dev")
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(context.Background(), "tool.image_load")
		assert.True(t, span.SpanContext().IsValid())
		span.End()
		assert.NoError(t, tp.Shutdown(context.Background()))
	}
}

func TestNewProvider_Unsupported(t *testing.T) {
	_, err := NewProvider(context.Background(), "jaeger", nil, "dev")
	assert.ErrorContains(t, err, "unsupported trace exporter")
}
