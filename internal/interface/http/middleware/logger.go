package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/kidsbook/pkg/response"
	"github.com/xiebiao/kidsbook/pkg/tracing"
)

// RequestIDHeader 请求ID响应头；客户端传入时沿用
const RequestIDHeader = "X-Request-ID"

// SlowRequestThreshold 超过该耗时的请求以Warn记录
const SlowRequestThreshold = 3 * time.Second

// Logger 访问日志中间件
// 1. 生成（或沿用）请求ID，写入响应头
// 2. 把带 request_id/trace_id 的logger放进Context，response.Error 用它记录内部错误
// 3. 请求结束后按状态码分级输出一条结构化日志
//
// 不记录请求体与Authorization头
func Logger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		fields := logrus.Fields{"request_id": requestID}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields["trace_id"] = traceID
		}
		entry := log.WithFields(fields)
		c.Set(response.LoggerKey, entry)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		entry = entry.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if uid := GetUserID(c); uid != uuid.Nil {
			entry = entry.WithField("user_id", uid.String())
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("请求处理失败")
		case latency > SlowRequestThreshold:
			entry.Warn("慢请求")
		case status >= 400:
			entry.Info("请求被拒绝")
		default:
			entry.Info("请求完成")
		}
	}
}
