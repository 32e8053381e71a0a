package middleware

import (
	"context"
	"strings"

	"casteaching-go/internal/api/response"
	"casteaching-go/internal/authz"
	"casteaching-go/internal/config"
	"casteaching-go/internal/model"
	"casteaching-go/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserID = "currentUserID"
	ContextKeyUser   = "currentUser"
)

// UserLoader 按 ID 加载用户（含权限）
type UserLoader func(ctx context.Context, userID int64) (*model.User, error)

// AuthRequired JWT 认证中间件，要求请求必须携带有效 Token
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(cfg, token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// LoadUser 根据 AuthRequired 写入的用户 ID 加载用户及权限
func LoadUser(load UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}

		user, err := load(c.Request.Context(), userID)
		if err != nil {
			response.Unauthorized(c, "user not found")
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// GetCurrentUserID 从 Gin Context 中获取当前登录用户 ID
func GetCurrentUserID(c *gin.Context) (int64, bool) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}

// GetCurrentUser 从 Gin Context 中获取当前用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok && user != nil
}

// CurrentSubject 当前请求的授权主体，未登录时为匿名主体
func CurrentSubject(c *gin.Context) authz.Subject {
	user, _ := GetCurrentUser(c)
	return authz.SubjectFromUser(user)
}

// Can 权限中间件（必须在用户加载之后使用），无权限时交给 onDeny 输出
func Can(action authz.Action, onDeny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authz.Allow(CurrentSubject(c), action) {
			onDeny(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractToken 从 Authorization 头中提取 Bearer Token
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
