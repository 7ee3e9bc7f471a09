package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), false, "voxel-sandbox")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracerProvider_RecordsSpans(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()

	tp, err := newTracerProvider(ctx, "voxel-sandbox-test", trace.WithSpanProcessor(recorder))
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "world.GenerateChunk")
	span.End()
	require.NoError(t, tp.Shutdown(ctx))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "world.GenerateChunk", ended[0].Name())
	value, ok := ended[0].Resource().Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "voxel-sandbox-test", value.AsString())
}
