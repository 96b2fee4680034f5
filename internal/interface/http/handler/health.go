package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/kidsbook/pkg/response"
)

// HealthChecker 数据库与缓存探活
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthHandler 健康检查
type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HealthCheck 健康检查
// @Summary      健康检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} response.Response
// @Failure      500 {object} response.Response "数据库不可用"
// @Router       /api/healthchecker [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if err := h.checker.Check(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}
