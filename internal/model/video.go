package model

import "time"

// Video 视频模型
// Previous/Next/SerieID 均为可空的标识引用，不加载关联对象
type Video struct {
	ID          int64      `gorm:"primaryKey;autoIncrement;comment:视频标识" json:"id"`
	Title       string     `gorm:"size:255;not null;comment:视频标题" json:"title"`
	Description string     `gorm:"type:text;comment:视频描述" json:"description"`
	URL         string     `gorm:"column:url;size:500;comment:视频地址" json:"url"`
	PublishedAt *time.Time `gorm:"index:idx_videos_published_at;comment:发布时间" json:"published_at"`
	Previous    *int64     `gorm:"comment:上一个视频ID" json:"previous"`
	Next        *int64     `gorm:"comment:下一个视频ID" json:"next"`
	SerieID     *int64     `gorm:"index:idx_videos_serie_id;comment:所属系列ID" json:"serie_id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}
