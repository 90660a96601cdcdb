package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { SetTracerProvider(nil) })
	return rec
}

func TestStartStageSpan(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartStageSpan(context.Background(), "plan", attribute.String("task_type", "feature"))
	RecordSuccess(span, attribute.Int("workers", 3))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pipeline.plan", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("task_type", "feature"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("workers", 3))
}

func TestRecordError(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartProviderSpan(context.Background(), "gemini", "generate")
	RecordError(span, nil)
	RecordError(span, errors.New("503"))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "provider.generate", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
}

func TestInitProviderDisabled(t *testing.T) {
	defer SetTracerProvider(nil)

	shutdown, err := InitProvider(context.Background(), DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, GetTracerProvider())
}

func TestInitProviderWriter(t *testing.T) {
	defer SetTracerProvider(nil)

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Writer = &buf

	_, err := InitProvider(context.Background(), cfg)
	require.NoError(t, err)

	_, span := StartStageSpan(context.Background(), "dedup")
	span.End()
	require.NoError(t, Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "pipeline.dedup")
}
