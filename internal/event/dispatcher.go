package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"casteaching-go/pkg/logger"

	"go.uber.org/zap"
)

// Publisher 事件投递目标（Kafka、Socket.IO 等）
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// PublisherFunc 函数形式的 Publisher
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error {
	return f(ctx, e)
}

type namedPublisher struct {
	name string
	pub  Publisher
}

// Dispatcher 异步分发事件，投递失败只记录日志，不影响调用方
type Dispatcher struct {
	timeout time.Duration

	mu         sync.RWMutex
	publishers []namedPublisher

	wg sync.WaitGroup
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{timeout: timeout}
}

// Register 注册投递目标
func (d *Dispatcher) Register(name string, p Publisher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.publishers = append(d.publishers, namedPublisher{name: name, pub: p})
}

// Dispatch 立即返回，每个投递目标在独立 goroutine 中执行
func (d *Dispatcher) Dispatch(e Event) {
	if d == nil || e == nil {
		return
	}

	d.mu.RLock()
	pubs := make([]namedPublisher, len(d.publishers))
	copy(pubs, d.publishers)
	d.mu.RUnlock()

	for _, p := range pubs {
		d.wg.Add(1)
		go d.deliver(p, e)
	}
}

func (d *Dispatcher) deliver(p namedPublisher, e Event) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event publisher panicked",
				zap.String("publisher", p.name),
				zap.String("event", e.Name()),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := p.pub.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("publisher", p.name),
			zap.String("event", e.Name()),
			zap.Error(err),
		)
		return
	}

	logger.Debug("Event published",
		zap.String("publisher", p.name),
		zap.String("event", e.Name()),
	)
}

// Wait 等待所有进行中的投递结束（测试与优雅退出时使用）
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
