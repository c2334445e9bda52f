package otel

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"inventoryflow/pkg/logger"
)

func TestAddSpanUsesInjectedTracer(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	ctx := InjectTracing(context.Background(), tp.Tracer("test"))
	ctx, span := AddSpan(ctx, "order.place")
	assert.NotEmpty(t, GetTraceID(ctx))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "order.place", ended[0].Name())
}

func TestAddSpanWithoutTracer(t *testing.T) {
	ctx, span := AddSpan(context.Background(), "noop")
	defer span.End()
	assert.Empty(t, GetTraceID(ctx))
}

func TestInitTracingWithoutExporter(t *testing.T) {
	tp, shutdown, err := InitTracing(logger.Nop(), Config{ServiceName: "inventoryflow", Probability: 1})
	require.NoError(t, err)
	defer shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "root")
	defer span.End()
	assert.NotEmpty(t, GetTraceID(ctx))
}

func TestExtractContinuesIncomingTrace(t *testing.T) {
	_, shutdown, err := InitTracing(logger.Nop(), Config{ServiceName: "inventoryflow", Probability: 1})
	require.NoError(t, err)
	defer shutdown(context.Background())

	h := http.Header{}
	h.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	ctx := Extract(context.Background(), h)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
}
