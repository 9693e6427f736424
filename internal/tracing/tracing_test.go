package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_Disabled(t *testing.T) {
	tr, err := InitTracing(Config{Enabled: false})
	require.NoError(t, err)

	ctx, span := tr.StartSpan(context.Background(), "op", attribute.String("k", "v"))
	defer span.End()
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
}

func TestNilTracer(t *testing.T) {
	var tr *Tracer
	_, span := tr.StartSpan(context.Background(), "op")
	span.End()
}

func TestShutdownWithoutProvider(t *testing.T) {
	assert.NoError(t, Shutdown(context.Background()))
}
