// Package tracing 提供基于OpenTelemetry的链路追踪
//
// 未调用InitTracer时，otel全局Provider是noop实现，StartSpan/EndSpan可以放心调用，
// 没有任何额外开销。启用后Span通过OTLP gRPC发送到Collector（Jaeger、Tempo等）。
//
// 使用示例：
//
//	shutdown, err := tracing.InitTracer("bookshelf-api", "localhost:4317")
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
//
//	func (s *service) CreateBook(ctx context.Context, f Fields) (b *Book, err error) {
//	    ctx, span := tracing.StartSpan(ctx, "bookshelf/book", "book.Service/CreateBook")
//	    defer func() { tracing.EndSpan(span, err) }()
//	    ...
//	}
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局TracerProvider
// 参数：
// - serviceName: 服务名称（Jaeger UI中显示）
// - endpoint: OTLP gRPC地址，如localhost:4317（不带协议）
//
// 返回shutdown函数，程序退出前必须调用，否则最后一批Span会丢失
func InitTracer(serviceName, endpoint string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. 创建OTLP gRPC Exporter
	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // 禁用TLS（生产环境应启用）
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 2. 资源属性（service.name是必需属性）
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 创建Tracer Provider，BatchSpanProcessor批量发送
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 4. 设置全局Provider和上下文传播器（W3C Trace Context + Baggage）
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 创建Span
// ctx中已有Span时新Span自动成为子Span
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName)
}

// EndSpan 结束Span，err不为nil时记录错误并标记失败
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ExtractTraceID 从Context中提取TraceID（用于日志关联）
func ExtractTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}
