// Package metrics 基于Prometheus的指标
//
// 命名约定：
//   - Counter 以 _total 结尾
//   - Histogram 以单位结尾（_seconds）
//   - 标签只用有限取值（method、status、result），不要用 user_id 这类高基数字段
//
// 使用方式：
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// result 标签取值
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultEmpty   = "empty"
)

var (
	initOnce sync.Once

	// HTTP

	// HTTPRequestsTotal 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration 标签：method、path
	HTTPRequestDuration *prometheus.HistogramVec

	HTTPRequestsInProgress prometheus.Gauge

	// 目录查询

	// CatalogQueriesTotal 标签：result（success/empty/failure）
	CatalogQueriesTotal *prometheus.CounterVec

	// CatalogQueryDuration 一次列表查询（候选、计数、分页、聚合）的总耗时
	CatalogQueryDuration prometheus.Histogram

	// CatalogFiltersTotal 各筛选参数的使用次数，标签：filter
	CatalogFiltersTotal *prometheus.CounterVec

	// 评论与账号

	// ReviewWritesTotal 标签：op（create/update/delete）、result
	ReviewWritesTotal *prometheus.CounterVec

	// AuthEventsTotal 标签：event（signup/login/refresh/logout/google）、result
	AuthEventsTotal *prometheus.CounterVec

	// DatabaseUp 后台探活结果，1可用 0不可用
	DatabaseUp prometheus.Gauge
)

// InitMetrics 注册全部指标到默认Registry；重复调用无副作用
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
				Name:    "http_request_duration_seconds",
				Help:    "HTTP请求耗时（秒）",
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

		CatalogQueriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_queries_total",
				Help: "图书列表查询总数",
			},
			[]string{"result"},
		)

		CatalogQueryDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_query_duration_seconds",
				Help:    "图书列表查询耗时（秒）",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		)

		CatalogFiltersTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_filters_total",
				Help: "筛选参数使用次数",
			},
			[]string{"filter"},
		)

		ReviewWritesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_writes_total",
				Help: "评论写操作总数",
			},
			[]string{"op", "result"},
		)

		AuthEventsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_events_total",
				Help: "注册、登录、刷新、登出次数",
			},
			[]string{"event", "result"},
		)

		DatabaseUp = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "database_up",
				Help: "数据库探活结果（1=可用, 0=不可用）",
			},
		)
	})
}

// Result err == nil 时为 success
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// RecordAuth 记录一次账号事件
func RecordAuth(event string, err error) {
	AuthEventsTotal.WithLabelValues(event, Result(err)).Inc()
}

// RecordReviewWrite 记录一次评论写操作
func RecordReviewWrite(op string, err error) {
	ReviewWritesTotal.WithLabelValues(op, Result(err)).Inc()
}
