package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracer_ExportsSpans(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	var buf bytes.Buffer
	shutdown, err := InitTracer(context.Background(), Options{ServiceName: ServiceName, Version: "test", Out: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(context.Background(), "generate")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name": "generate"`)
	assert.Contains(t, buf.String(), ServiceName)
}

func TestInitTracer_OTLPEndpoint(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	shutdown, err := InitTracer(context.Background(), Options{
		ServiceName: ServiceName,
		Version:     "test",
		Endpoint:    "localhost:4317",
	})
	require.NoError(t, err, "the gRPC exporter connects lazily")
	assert.NotEqual(t, previous, otel.GetTracerProvider())
	_ = shutdown(context.Background())
}
