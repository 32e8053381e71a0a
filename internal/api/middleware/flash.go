package middleware

import (
	"context"

	"casteaching-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contextKeyFlashStore = "flashStore"

	// FlashStatus 操作结果提示
	FlashStatus = "status"
	// FlashError 操作失败提示
	FlashError = "error"
)

// FlashStore 会话级一次性消息存储
type FlashStore interface {
	PutFlash(ctx context.Context, sid, key, value string) error
	PullFlash(ctx context.Context, sid string) (map[string]string, error)
}

// Flashes 将闪存消息存储注入上下文
func Flashes(store FlashStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKeyFlashStore, store)
		c.Next()
	}
}

// SetFlash 写入一条闪存消息，下一个渲染的页面读取后即清除
func SetFlash(c *gin.Context, key, value string) {
	store, sid := flashStore(c)
	if store == nil || sid == "" {
		return
	}
	if err := store.PutFlash(c.Request.Context(), sid, key, value); err != nil {
		logger.Warn("Failed to store flash message", zap.String("key", key), zap.Error(err))
	}
}

// PullFlash 取出并清空当前会话的闪存消息
func PullFlash(c *gin.Context) map[string]string {
	store, sid := flashStore(c)
	if store == nil || sid == "" {
		return nil
	}
	flash, err := store.PullFlash(c.Request.Context(), sid)
	if err != nil {
		logger.Warn("Failed to read flash messages", zap.Error(err))
		return nil
	}
	return flash
}

func flashStore(c *gin.Context) (FlashStore, string) {
	val, ok := c.Get(contextKeyFlashStore)
	if !ok {
		return nil, ""
	}
	store, _ := val.(FlashStore)
	return store, GetSessionID(c)
}
