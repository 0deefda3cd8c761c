package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

const (
	// RequestIDHeader 请求ID响应头,客户端传入时沿用
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey gin.Context中的请求ID键
	RequestIDKey = "request_id"

	slowRequestThreshold = 3 * time.Second
)

// Logger 请求日志中间件
//
// 教学要点：
// 1. 记录每个请求的基本信息（方法、路径、耗时、状态码、客户端IP）
// 2. 生成唯一的请求ID，写入响应头X-Request-ID
// 3. 5xx记error，4xx和其余记info，超过3秒的慢请求记warn
// 4. 同时记录Prometheus HTTP指标，path标签使用路由模板
func Logger(logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("http")
	metrics.InitMetrics()

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		metrics.IncGauge(metrics.HTTPRequestsInProgress)
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		metrics.DecGauge(metrics.HTTPRequestsInProgress)

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(status),
		})
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, latency.Seconds())

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case latency > slowRequestThreshold:
			logger.Warn("slow request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// GetRequestID 从Context中获取请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
