package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"casteaching-go/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

const (
	sessionKeyPrefix = "session:"
	flashKeySuffix   = ":flash"
	sessionUserField = "user_id"
)

// SessionRepository 基于 Redis 的会话存储
// session:{id} 保存用户 ID；session:{id}:flash 保存一次性消息
type SessionRepository struct {
	client   *redis.Client
	lifetime time.Duration
}

func NewSessionRepository(client *redis.Client, lifetime time.Duration) *SessionRepository {
	return &SessionRepository{client: client, lifetime: lifetime}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func flashKey(id string) string {
	return sessionKeyPrefix + id + flashKeySuffix
}

// Create 为用户创建新会话，返回会话 ID
func (r *SessionRepository) Create(ctx context.Context, userID int64) (string, error) {
	id, err := utils.GenerateSessionID()
	if err != nil {
		return "", err
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(id), sessionUserField, userID)
	pipe.Expire(ctx, sessionKey(id), r.lifetime)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// UserID 返回会话所属用户 ID，并顺延有效期
func (r *SessionRepository) UserID(ctx context.Context, id string) (int64, error) {
	val, err := r.client.HGet(ctx, sessionKey(id), sessionUserField).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}

	if err := r.client.Expire(ctx, sessionKey(id), r.lifetime).Err(); err != nil {
		return 0, err
	}
	return userID, nil
}

// Destroy 删除会话及其闪存消息
func (r *SessionRepository) Destroy(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id), flashKey(id)).Err()
}

// PutFlash 写入一次性消息，下一次 PullFlash 时取出
func (r *SessionRepository) PutFlash(ctx context.Context, id, key, value string) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, flashKey(id), key, value)
	pipe.Expire(ctx, flashKey(id), r.lifetime)
	_, err := pipe.Exec(ctx)
	return err
}

// PullFlash 取出并清空全部一次性消息
func (r *SessionRepository) PullFlash(ctx context.Context, id string) (map[string]string, error) {
	pipe := r.client.TxPipeline()
	all := pipe.HGetAll(ctx, flashKey(id))
	pipe.Del(ctx, flashKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return all.Val(), nil
}
