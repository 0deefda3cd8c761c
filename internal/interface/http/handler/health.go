package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/pkg/response"
)

// Pinger 存储健康检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查处理器(Kubernetes liveness/readiness probe)
type HealthHandler struct {
	pinger Pinger
	logger *zap.Logger
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(pinger Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{pinger: pinger, logger: logger.Named("http.health")}
}

// Ping 健康检查
// @Summary  健康检查
// @Tags     系统
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} response.ErrorBody
// @Router   /ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("store ping failed", zap.Error(err))
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	response.OK(c, gin.H{
		"message": "pong",
		"status":  "healthy",
	})
}
