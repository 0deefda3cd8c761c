package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// ErrorBody 统一错误响应结构
// 设计说明：
// 1. 成功时直接返回资源本身（对象或数组），不做信封包装
// 2. 失败时返回{"error": "..."}，校验错误额外带details和error_code
// 3. 内部错误的原始cause只写日志，不出现在响应体里
type ErrorBody struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// OK 200响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201响应（创建资源）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	book, err := uc.Execute(ctx, id)
//	if err != nil {
//	    response.Error(c, logger, err)
//	    return
//	}
func Error(c *gin.Context, logger *zap.Logger, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	// 服务端错误记录error日志（包含内部cause），客户端错误只记debug
	if appErr.IsInternal() {
		logger.Error(appErr.Message,
			zap.Int("status", status),
			zap.String("path", c.Request.URL.Path),
			zap.Error(appErr.Err),
		)
	} else {
		logger.Debug("request rejected",
			zap.Int("status", status),
			zap.String("path", c.Request.URL.Path),
			zap.String("reason", appErr.Message),
		)
	}

	_ = c.Error(err)
	c.JSON(status, ErrorBody{
		Error:     appErr.Message,
		Details:   appErr.Details,
		ErrorCode: appErr.Reason,
	})
}

// ErrorWithStatus 自定义状态码和消息
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Error: message})
}

// AbortWithError 中止后续处理并返回错误（用于中间件）
func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}
