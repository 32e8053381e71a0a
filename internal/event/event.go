// Package event 进程内事件总线：视频写操作之后异步分发领域事件
package event

import (
	"time"

	"casteaching-go/internal/model"
)

// 事件类型
const (
	TypeVideoCreated = "video.created"
	TypeVideoUpdated = "video.updated"
	TypeVideoDeleted = "video.deleted"
)

// Event 领域事件
type Event interface {
	Name() string
}

// Broadcastable 需要推送到私有实时频道的事件
type Broadcastable interface {
	Event
	BroadcastAs() string
	BroadcastWith() any
}

// Envelope 事件在消息队列中的统一格式
type Envelope struct {
	Type       string       `json:"type"`
	VideoID    int64        `json:"video_id"`
	Video      *model.Video `json:"video,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Enveloped 可转换为 Envelope 的事件
type Enveloped interface {
	Event
	Envelope() Envelope
}

// VideoCreated 视频创建成功
type VideoCreated struct {
	Video      model.Video
	OccurredAt time.Time
}

func NewVideoCreated(v model.Video) VideoCreated {
	return VideoCreated{Video: v, OccurredAt: time.Now()}
}

func (e VideoCreated) Name() string { return TypeVideoCreated }

func (e VideoCreated) BroadcastAs() string { return TypeVideoCreated }

func (e VideoCreated) BroadcastWith() any {
	return map[string]any{"video": e.Video}
}

func (e VideoCreated) Envelope() Envelope {
	v := e.Video
	return Envelope{Type: e.Name(), VideoID: v.ID, Video: &v, OccurredAt: e.OccurredAt}
}

// VideoUpdated 视频更新成功
type VideoUpdated struct {
	Video      model.Video
	OccurredAt time.Time
}

func NewVideoUpdated(v model.Video) VideoUpdated {
	return VideoUpdated{Video: v, OccurredAt: time.Now()}
}

func (e VideoUpdated) Name() string { return TypeVideoUpdated }

func (e VideoUpdated) Envelope() Envelope {
	v := e.Video
	return Envelope{Type: e.Name(), VideoID: v.ID, Video: &v, OccurredAt: e.OccurredAt}
}

// VideoDeleted 视频已删除
type VideoDeleted struct {
	VideoID    int64
	OccurredAt time.Time
}

func NewVideoDeleted(id int64) VideoDeleted {
	return VideoDeleted{VideoID: id, OccurredAt: time.Now()}
}

func (e VideoDeleted) Name() string { return TypeVideoDeleted }

func (e VideoDeleted) Envelope() Envelope {
	return Envelope{Type: e.Name(), VideoID: e.VideoID, OccurredAt: e.OccurredAt}
}
