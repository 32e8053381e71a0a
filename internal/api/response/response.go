// Package response JSON API 的统一响应信封与错误映射
package response

import (
	"errors"
	"net/http"

	"casteaching-go/internal/service"
	"casteaching-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 错误类型，写入 error.type
const (
	TypeBadRequest   = "BadRequest"
	TypeUnauthorized = "Unauthorized"
	TypeForbidden    = "Forbidden"
	TypeNotFound     = "NotFound"
	TypeInternal     = "InternalServerError"
)

// Response 统一成功响应
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorInfo 错误详情
type ErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ErrorResponse 统一错误响应
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// 业务错误到 HTTP 状态码的映射，未列出的错误一律视为服务器错误
var errorStatus = []struct {
	err    error
	status int
	kind   string
}{
	{service.ErrVideoNotFound, http.StatusNotFound, TypeNotFound},
	{service.ErrInvalidCredential, http.StatusUnauthorized, TypeUnauthorized},
	{service.ErrUserNotFound, http.StatusUnauthorized, TypeUnauthorized},
	{service.ErrSessionExpired, http.StatusUnauthorized, TypeUnauthorized},
}

func success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func OK(c *gin.Context, message string, data interface{}) {
	success(c, http.StatusOK, message, data)
}

func Created(c *gin.Context, message string, data interface{}) {
	success(c, http.StatusCreated, message, data)
}

func Fail(c *gin.Context, statusCode int, errType string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: ErrorInfo{Code: statusCode, Message: message, Type: errType},
	})
}

// FromError 将服务层错误写成错误响应
// 已知业务错误按映射返回原始信息；其余错误记录日志后返回通用 500，不暴露内部细节
func FromError(c *gin.Context, err error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			Fail(c, m.status, m.kind, m.err.Error())
			return
		}
	}

	logger.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	InternalError(c, "Internal server error")
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, TypeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, TypeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, TypeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, TypeNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, TypeInternal, message)
}
