package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(previous)

	_, span := StartSpan(context.Background(), "lifecycle.Apply", attribute.String("jobPostingId", "job-1"))
	EndSpan(span, errors.New("job is closed"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "lifecycle.Apply", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("jobPostingId", "job-1"))
}

func TestNewTracerProvider_NoEndpoint(t *testing.T) {
	tp, err := newTracerProvider("jobmarket-workers", "")
	assert.NoError(t, err)
	assert.Nil(t, tp)
}
