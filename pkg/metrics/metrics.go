// Package metrics 提供基于Prometheus的指标收集
//
// # 指标一览
//
//	http_requests_total{method,path,status}          Counter   HTTP请求总数
//	http_request_duration_seconds{method,path}       Histogram HTTP请求耗时
//	http_requests_in_progress                        Gauge     正在处理的HTTP请求数
//	book_operations_total{operation,result}          Counter   图书服务操作次数(success/not_found/error)
//	book_operation_duration_seconds{operation}       Histogram 图书服务操作耗时
//	book_events_published_total{type,result}         Counter   图书事件发布次数
//	book_events_breaker_state                        Gauge     事件发布熔断器状态(0关闭/1打开/2半开)
//
// # 使用示例
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	start := time.Now()
//	defer func() {
//	    metrics.ObserveHistogramVec(metrics.BookOperationDuration,
//	        map[string]string{"operation": "create"}, time.Since(start).Seconds())
//	}()
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds）。
// path标签使用路由模板（/api/v1/books/:id），不要用实际URL，避免高基数。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initOnce 防止重复注册（重复注册到默认Registry会panic）
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/v1/books）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 业务指标

	// BookOperationsTotal 图书服务操作次数
	// 标签：operation（list/get/create/update/delete）、result（success/not_found/error）
	BookOperationsTotal *prometheus.CounterVec

	// BookOperationDuration 图书服务操作耗时（含存储IO）
	BookOperationDuration *prometheus.HistogramVec

	// BookEventsPublishedTotal 图书事件发布次数
	// 标签：type（book.created...）、result（success/failure）
	BookEventsPublishedTotal *prometheus.CounterVec

	// BookEventsBreakerState 事件发布熔断器状态，取值同circuitbreaker.State
	BookEventsBreakerState prometheus.Gauge
)

// InitMetrics 初始化所有Prometheus指标
//
// 可以被多次调用（服务构造函数、中间件、测试都会调用），只有第一次生效。
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP请求耗时（秒）",
				// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		BookOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "book_operations_total",
				Help: "图书服务操作次数",
			},
			[]string{"operation", "result"},
		)

		BookOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "book_operation_duration_seconds",
				Help:    "图书服务操作耗时（秒）",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		)

		BookEventsPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "book_events_published_total",
				Help: "图书事件发布次数",
			},
			[]string{"type", "result"},
		)

		BookEventsBreakerState = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "book_events_breaker_state",
				Help: "图书事件发布熔断器状态（0关闭，1打开，2半开）",
			},
		)
	})
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
