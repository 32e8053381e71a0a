package model

import "time"

// User 用户模型
type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;comment:用户标识" json:"id"`
	Name       string    `gorm:"size:255;not null;comment:用户名" json:"name"`
	Email      string    `gorm:"size:255;not null;uniqueIndex;comment:邮箱" json:"email"`
	Password   string    `gorm:"size:255;not null;comment:密码" json:"-"` // json:"-" 序列化时忽略密码
	Superadmin bool      `gorm:"not null;default:false;comment:超级管理员标识" json:"superadmin"`
	CreatedAt  time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	Permissions []Permission `gorm:"many2many:user_permissions;" json:"permissions,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// PermissionNames 返回用户拥有的权限名列表
func (u *User) PermissionNames() []string {
	names := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		names = append(names, p.Name)
	}
	return names
}
