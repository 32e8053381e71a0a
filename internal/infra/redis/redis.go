// Package redis 会话与闪存消息所用的 Redis 连接
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casteaching-go/internal/config"
	"casteaching-go/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var Client *redis.Client

// ErrNotInitialized Init 尚未成功
var ErrNotInitialized = errors.New("redis not initialized")

// 每个请求都要读会话，超时取短值，存储故障时请求尽快以 500 结束
const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
)

// NewClient 按配置构造客户端，不做连接检查
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})
}

// Init 初始化全局客户端，连接失败时不保留客户端
func Init(cfg *config.RedisConfig) error {
	client := NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	Client = client
	logger.Info("Redis connected",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
	)
	return nil
}

// Ping 健康检查，返回往返耗时
func Ping(ctx context.Context) (time.Duration, error) {
	if Client == nil {
		return 0, ErrNotInitialized
	}
	start := time.Now()
	if err := Client.Ping(ctx).Err(); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Close 关闭Redis连接
func Close() error {
	if Client == nil {
		return nil
	}
	client := Client
	Client = nil
	logger.Info("Redis connection closed")
	return client.Close()
}

// Get 获取Redis客户端实例
func Get() *redis.Client {
	return Client
}
