package repository

import (
	"context"
	"strings"

	"casteaching-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID 根据 ID 查询用户（含权限）
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Permissions").Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱查询用户（不区分大小写，含权限）
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Permissions").
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update 更新用户字段
func (r *UserRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

// EnsurePermissions 确保权限行存在（幂等）
func (r *UserRepository) EnsurePermissions(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	perms := make([]model.Permission, 0, len(names))
	for _, n := range names {
		perms = append(perms, model.Permission{Name: n})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&perms).Error
}

// GivePermissions 为用户授予权限（权限须已存在）
func (r *UserRepository) GivePermissions(ctx context.Context, user *model.User, names ...string) error {
	var perms []model.Permission
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&perms).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(user).Association("Permissions").Append(&perms); err != nil {
		return err
	}
	return nil
}
