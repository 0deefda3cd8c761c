package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// useRecorder 将全局Provider替换为内存记录器，测试结束后恢复
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := useRecorder(t)

	ctx, parent := StartSpan(context.Background(), "test", "parent")
	_, child := StartSpan(ctx, "test", "child")
	EndSpan(child, nil)
	EndSpan(parent, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name())
	assert.Equal(t, "parent", spans[1].Name())
	// 子Span与父Span属于同一条链路
	assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].SpanContext().TraceID())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestEndSpanRecordsError(t *testing.T) {
	recorder := useRecorder(t)

	_, span := StartSpan(context.Background(), "test", "failing")
	EndSpan(span, errors.New("connection refused"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "connection refused", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestExtractTraceID(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))

	useRecorder(t)
	ctx, span := StartSpan(context.Background(), "test", "op")
	defer span.End()

	assert.Len(t, ExtractTraceID(ctx), 32)
}
