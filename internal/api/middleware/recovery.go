package middleware

import (
	"net/http"
	"strings"

	"casteaching-go/internal/api/response"
	"casteaching-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery 恢复中间件，捕获panic
// API 请求返回 JSON，页面请求交给 renderPage 输出 500 页面
func Recovery(renderPage gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("request_id", GetRequestID(c)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				if strings.HasPrefix(c.Request.URL.Path, "/api/") || renderPage == nil {
					response.InternalError(c, "Internal server error")
				} else {
					c.Status(http.StatusInternalServerError)
					renderPage(c)
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
