package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casteaching-go/internal/config"
	"casteaching-go/internal/event"
	"casteaching-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka brokers not configured")
	}

	producer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// EventPublisher 将视频事件写入 Kafka，供 worker 同步搜索索引
type EventPublisher struct {
	topic string
}

func NewEventPublisher(topic string) *EventPublisher {
	return &EventPublisher{topic: topic}
}

// Publish 实现 event.Publisher，同一视频的事件使用同一个 key 以保证顺序
func (p *EventPublisher) Publish(ctx context.Context, e event.Event) error {
	enveloped, ok := e.(event.Enveloped)
	if !ok {
		return nil
	}

	env := enveloped.Envelope()
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal video event: %w", err)
	}

	if err := SendRaw(ctx, p.topic, videoKey(env.VideoID), payload); err != nil {
		return err
	}

	logger.Debug("Video event sent",
		zap.String("type", env.Type),
		zap.Int64("video_id", env.VideoID),
		zap.String("topic", p.topic),
	)
	return nil
}

func videoKey(id int64) string {
	return fmt.Sprintf("video-%d", id)
}

// SendRaw 发送原始消息到指定 topic
func SendRaw(ctx context.Context, topic, key string, value []byte) error {
	if producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send kafka message: %w", err)
	}
	return nil
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
