package model

import "time"

// Permission 权限模型
type Permission struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:权限标识" json:"id"`
	Name      string    `gorm:"size:125;not null;uniqueIndex;comment:权限名" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
}

func (Permission) TableName() string {
	return "permissions"
}
