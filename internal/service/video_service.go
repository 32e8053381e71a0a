package service

import (
	"context"
	"errors"
	"fmt"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/event"
	"casteaching-go/internal/model"
	"casteaching-go/internal/repository"
	"casteaching-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrVideoNotFound = errors.New("video not found")
)

// EventDispatcher 视频写操作完成后的事件出口
type EventDispatcher interface {
	Dispatch(e event.Event)
}

// ImageResolver 系列封面 URL 解析
type ImageResolver interface {
	ImageURL(ctx context.Context, objectName string) (string, error)
}

type VideoService struct {
	videoRepo  *repository.VideoRepository
	serieRepo  *repository.SerieRepository
	dispatcher EventDispatcher
	images     ImageResolver
}

func NewVideoService(videoRepo *repository.VideoRepository, serieRepo *repository.SerieRepository, dispatcher EventDispatcher, images ImageResolver) *VideoService {
	return &VideoService{
		videoRepo:  videoRepo,
		serieRepo:  serieRepo,
		dispatcher: dispatcher,
		images:     images,
	}
}

// Get 获取单个视频
func (s *VideoService) Get(ctx context.Context, id int64) (*dto.VideoInfo, error) {
	video, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVideoInfo(video), nil
}

// GetDetail 获取视频详情，附带所属系列（封面 URL 解析失败不影响页面）
func (s *VideoService) GetDetail(ctx context.Context, id int64) (*dto.VideoDetail, error) {
	video, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &dto.VideoDetail{VideoInfo: *toVideoInfo(video)}
	if video.SerieID == nil {
		return detail, nil
	}

	serie, err := s.serieRepo.GetByID(ctx, *video.SerieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail, nil
		}
		return nil, err
	}

	detail.Serie = toSerieBrief(serie)
	if serie.Image != nil && s.images != nil {
		imageURL, err := s.images.ImageURL(ctx, *serie.Image)
		if err != nil {
			logger.Warn("Resolve serie image failed",
				zap.Int64("serie_id", serie.ID),
				zap.Error(err),
			)
		} else {
			detail.Serie.ImageURL = imageURL
		}
	}

	return detail, nil
}

// List 全部视频（管理列表）
func (s *VideoService) List(ctx context.Context) (*dto.VideoListData, error) {
	videos, err := s.videoRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.VideoInfo, 0, len(videos))
	for i := range videos {
		items = append(items, *toVideoInfo(&videos[i]))
	}
	return &dto.VideoListData{Videos: items, Total: int64(len(items))}, nil
}

// ListSeries 管理表单中可选的系列
func (s *VideoService) ListSeries(ctx context.Context) ([]dto.SerieBrief, error) {
	series, err := s.serieRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SerieBrief, 0, len(series))
	for i := range series {
		items = append(items, *toSerieBrief(&series[i]))
	}
	return items, nil
}

// Create 创建视频（发布时间为空），成功后异步分发 VideoCreated
func (s *VideoService) Create(ctx context.Context, req *dto.VideoStoreRequest) (*dto.VideoInfo, error) {
	video := &model.Video{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		SerieID:     normalizeSerieID(req.SerieID),
	}

	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}

	logger.Info("Video created",
		zap.Int64("video_id", video.ID),
		zap.String("title", video.Title),
	)

	s.dispatch(event.NewVideoCreated(*video))
	return toVideoInfo(video), nil
}

// Update 整体替换 title/description/url，serie_id 仅在请求中出现时修改
func (s *VideoService) Update(ctx context.Context, id int64, req *dto.VideoUpdateRequest) (*dto.VideoInfo, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"url":         req.URL,
	}
	if req.SerieIDSet {
		updates["serie_id"] = nil
		if serieID := normalizeSerieID(req.SerieID); serieID != nil {
			updates["serie_id"] = *serieID
		}
	}

	video, err := s.videoRepo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("update video %d: %w", id, err)
	}

	logger.Info("Video updated", zap.Int64("video_id", id))

	s.dispatch(event.NewVideoUpdated(*video))
	return toVideoInfo(video), nil
}

// Delete 物理删除视频
func (s *VideoService) Delete(ctx context.Context, id int64) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	if err := s.videoRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("delete video %d: %w", id, err)
	}

	logger.Info("Video deleted", zap.Int64("video_id", id))

	s.dispatch(event.NewVideoDeleted(id))
	return nil
}

func (s *VideoService) find(ctx context.Context, id int64) (*model.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return video, nil
}

func (s *VideoService) dispatch(e event.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(e)
}

// 表单中空的 serie_id 绑定为 0，视为不属于任何系列
func normalizeSerieID(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	v := *id
	return &v
}

func toVideoInfo(v *model.Video) *dto.VideoInfo {
	return &dto.VideoInfo{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		URL:         v.URL,
		PublishedAt: v.PublishedAt,
		Previous:    v.Previous,
		Next:        v.Next,
		SerieID:     v.SerieID,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toSerieBrief(s *model.Serie) *dto.SerieBrief {
	return &dto.SerieBrief{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		TeacherName:     s.TeacherName,
		TeacherPhotoURL: s.TeacherPhotoURL,
	}
}
