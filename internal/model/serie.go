package model

import "time"

// Serie 视频系列模型
type Serie struct {
	ID              int64     `gorm:"primaryKey;autoIncrement;comment:系列标识" json:"id"`
	Title           string    `gorm:"size:255;not null;comment:系列标题" json:"title"`
	Description     string    `gorm:"type:text;comment:系列描述" json:"description"`
	Image           *string   `gorm:"size:500;comment:封面图对象名" json:"image"`
	TeacherName     string    `gorm:"size:255;comment:讲师姓名" json:"teacher_name"`
	TeacherPhotoURL *string   `gorm:"column:teacher_photo_url;size:500;comment:讲师头像" json:"teacher_photo_url"`
	CreatedAt       time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`
}

func (Serie) TableName() string {
	return "series"
}
