package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// Recovery Panic恢复中间件
// 任何未处理的panic都返回500 {"error":"Internal server error"}，堆栈只写日志
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("http.recovery")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("request_id", GetRequestID(c)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				response.AbortWithError(c, http.StatusInternalServerError, apperrors.ErrInternal.Message)
			}
		}()
		c.Next()
	}
}
