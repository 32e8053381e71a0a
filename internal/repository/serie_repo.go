package repository

import (
	"context"

	"casteaching-go/internal/model"

	"gorm.io/gorm"
)

type SerieRepository struct {
	db *gorm.DB
}

func NewSerieRepository(db *gorm.DB) *SerieRepository {
	return &SerieRepository{db: db}
}

// GetByID 根据 ID 获取系列
func (r *SerieRepository) GetByID(ctx context.Context, id int64) (*model.Serie, error) {
	var serie model.Serie
	if err := r.db.WithContext(ctx).First(&serie, id).Error; err != nil {
		return nil, err
	}
	return &serie, nil
}

// List 全部系列，供管理表单下拉选择
func (r *SerieRepository) List(ctx context.Context) ([]model.Serie, error) {
	var series []model.Serie
	err := r.db.WithContext(ctx).Order("title ASC").Find(&series).Error
	return series, err
}
