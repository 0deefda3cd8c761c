package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，HTTPStatus()由Code推导出HTTP状态码（Code/100）
// 2. Message是返回给客户端的错误信息
// 3. Reason是机器可读的错误标识（如ERROR_INVALID_DATA），只有校验错误才设置
// 4. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Reason  string `json:"error_code,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使预定义错误在被Wrap之后仍能用errors.Is判断
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HTTPStatus 由业务错误码推导HTTP状态码
// 40402 → 404, 50000 → 500
func (e *AppError) HTTPStatus() int {
	status := e.Code / 100
	if status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// IsInternal 是否为服务端错误（需要记录error日志）
func (e *AppError) IsInternal() bool {
	return e.HTTPStatus() >= http.StatusInternalServerError
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Invalid 创建参数校验错误
// 客户端看到的是：{"error":"Invalid data: <details>","details":"<details>","error_code":"ERROR_INVALID_DATA"}
func Invalid(details string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidData,
		Message: "Invalid data: " + details,
		Details: details,
		Reason:  ReasonInvalidData,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、资源不存在）
// - 5xxxx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal = 50000 // 内部错误（存储不可用等）

	// 参数错误（40000-40099）
	ErrCodeInvalidData = 40000 // 请求体缺失或字段校验失败

	// 资源错误（40400-40499）
	ErrCodeBookNotFound = 40402 // 图书不存在
)

// ReasonInvalidData 校验失败时返回给客户端的error_code
const ReasonInvalidData = "ERROR_INVALID_DATA"

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	ErrInternal = New(ErrCodeInternal, "Internal server error")

	ErrInvalidData = New(ErrCodeInvalidData, "Invalid data")

	ErrBookNotFound = New(ErrCodeBookNotFound, "Book not found")
)

// =========================================
// 辅助函数
// =========================================

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "Internal server error")
}
