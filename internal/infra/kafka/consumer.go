package kafka

import (
	"context"
	"encoding/json"
	"time"

	"casteaching-go/internal/event"
	"casteaching-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EnvelopeHandler 处理视频事件的回调函数
type EnvelopeHandler func(ctx context.Context, env *event.Envelope) error

// StartVideoEventConsumer 启动视频事件消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartVideoEventConsumer(ctx context.Context, brokers []string, topic, groupID string, handler EnvelopeHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka video event consumer stopped")
	}()

	logger.Info("Kafka video event consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		env, err := DecodeEnvelope(msg.Value)
		if err != nil {
			logger.Error("Failed to unmarshal video event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		logger.Info("Received video event",
			zap.String("type", env.Type),
			zap.Int64("video_id", env.VideoID),
		)

		if err := handler(ctx, env); err != nil {
			logger.Error("Failed to handle video event",
				zap.String("type", env.Type),
				zap.Int64("video_id", env.VideoID),
				zap.Error(err),
			)
		}
	}
}

// DecodeEnvelope 解析消息体
func DecodeEnvelope(value []byte) (*event.Envelope, error) {
	var env event.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
