package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"casteaching-go/internal/api/response"
	"casteaching-go/internal/config"
	"casteaching-go/internal/model"
	"casteaching-go/internal/service"
	"casteaching-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ContextKeySessionID = "sessionID"

// SessionLoader 根据会话 ID 加载用户
type SessionLoader func(ctx context.Context, sid string) (*model.User, error)

// Session 读取会话 Cookie 并加载当前用户；会话失效时清除 Cookie
// 未登录的请求照常放行，由 Authenticate 决定是否拦截
// 存储故障不视为登出，API 请求返回 JSON，页面请求交给 renderPage 输出 500 页面
func Session(cfg *config.SessionConfig, load SessionLoader, renderPage gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.CookieName)
		if err != nil || sid == "" {
			c.Next()
			return
		}

		user, err := load(c.Request.Context(), sid)
		switch {
		case errors.Is(err, service.ErrSessionExpired), errors.Is(err, service.ErrUserNotFound):
			logger.Debug("Session rejected", zap.Error(err))
			ClearSessionCookie(c, cfg)
			c.Next()
			return
		case err != nil:
			logger.Error("Load session failed",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			if strings.HasPrefix(c.Request.URL.Path, "/api/") || renderPage == nil {
				response.InternalError(c, "Internal server error")
			} else {
				c.Status(http.StatusInternalServerError)
				renderPage(c)
			}
			c.Abort()
			return
		}

		c.Set(ContextKeySessionID, sid)
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// Authenticate 要求已登录，否则重定向到登录页
func Authenticate(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetCurrentUser(c); !ok {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSessionID 当前请求的会话 ID
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}

// SetSessionCookie 写入会话 Cookie（HttpOnly）
func SetSessionCookie(c *gin.Context, cfg *config.SessionConfig, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, sid, int(cfg.Lifetime().Seconds()), "/", "", cfg.Secure, true)
}

// ClearSessionCookie 删除会话 Cookie
func ClearSessionCookie(c *gin.Context, cfg *config.SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.Secure, true)
}
