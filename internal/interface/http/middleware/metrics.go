package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/kidsbook/pkg/metrics"
)

// Metrics HTTP指标中间件
// path 标签使用路由模板（/api/v1/reviews/:id），未匹配路由统一记为 unmatched
func Metrics() gin.HandlerFunc {
	metrics.InitMetrics()
	return func(c *gin.Context) {
		metrics.HTTPRequestsInProgress.Inc()
		start := time.Now()

		c.Next()

		metrics.HTTPRequestsInProgress.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		})
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, time.Since(start).Seconds())
	}
}
