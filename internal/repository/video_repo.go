package repository

import (
	"context"
	"strings"

	"casteaching-go/internal/model"

	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// GetByID 根据 ID 获取视频
func (r *VideoRepository) GetByID(ctx context.Context, id int64) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDs 批量查询视频（顺序不保证）
func (r *VideoRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var videos []model.Video
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&videos).Error
	return videos, err
}

// Create 创建视频记录
func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

// Update 更新视频字段（map 形式，允许写入零值与 NULL）
func (r *VideoRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) (*model.Video, error) {
	result := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete 物理删除
func (r *VideoRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Video{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 全部视频，按 ID 升序
func (r *VideoRepository) List(ctx context.Context) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).Order("id ASC").Find(&videos).Error
	return videos, err
}

// Search 标题/描述模糊查询（分页），用于搜索降级
func (r *VideoRepository) Search(ctx context.Context, q string, skip, limit int) ([]model.Video, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Video{})

	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []model.Video
	if err := query.Order("id DESC").Offset(skip).Limit(limit).Find(&videos).Error; err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}
