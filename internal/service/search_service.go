package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/event"
	infraES "casteaching-go/internal/infra/elasticsearch"
	"casteaching-go/internal/model"
	"casteaching-go/internal/repository"
	"casteaching-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	SearchSourceES = "elasticsearch"
	SearchSourceDB = "database"
)

type SearchService struct {
	videoRepo *repository.VideoRepository
}

func NewSearchService(videoRepo *repository.VideoRepository) *SearchService {
	return &SearchService{videoRepo: videoRepo}
}

// SearchVideos 搜索视频（ES 优先，失败则降级到 DB）
func (s *SearchService) SearchVideos(ctx context.Context, req *dto.SearchVideoRequest) (*dto.SearchVideoData, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	data, err := s.searchFromES(ctx, req)
	if err != nil {
		if !errors.Is(err, infraES.ErrNotInitialized) {
			logger.Warn("ES search failed, fallback to DB", zap.Error(err))
		}
		return s.searchFromDB(ctx, req)
	}
	return data, nil
}

func (s *SearchService) searchFromES(ctx context.Context, req *dto.SearchVideoRequest) (*dto.SearchVideoData, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ids, total, err := infraES.SearchVideoIDs(ctx, req.Q, (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		return nil, err
	}

	videos, err := s.videoRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	videoMap := make(map[int64]*model.Video, len(videos))
	for i := range videos {
		videoMap[videos[i].ID] = &videos[i]
	}

	// 保持 ES 相关度顺序，索引中残留的已删除视频直接跳过
	ordered := make([]model.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := videoMap[id]; ok {
			ordered = append(ordered, *v)
		}
	}

	return buildSearchData(ordered, total, req.Page, req.PageSize, SearchSourceES), nil
}

func (s *SearchService) searchFromDB(ctx context.Context, req *dto.SearchVideoRequest) (*dto.SearchVideoData, error) {
	videos, total, err := s.videoRepo.Search(ctx, req.Q, (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		return nil, err
	}
	return buildSearchData(videos, total, req.Page, req.PageSize, SearchSourceDB), nil
}

func buildSearchData(videos []model.Video, total int64, page, pageSize int, source string) *dto.SearchVideoData {
	items := make([]dto.VideoInfo, 0, len(videos))
	for i := range videos {
		items = append(items, *toVideoInfo(&videos[i]))
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return &dto.SearchVideoData{
		Videos:     items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Source:     source,
	}
}

// HandleVideoEvent 处理 Kafka 中的视频事件，保持搜索索引与数据库一致
func (s *SearchService) HandleVideoEvent(ctx context.Context, env *event.Envelope) error {
	switch env.Type {
	case event.TypeVideoCreated, event.TypeVideoUpdated:
		return s.SyncVideoToES(ctx, env.VideoID)
	case event.TypeVideoDeleted:
		return infraES.DeleteVideo(ctx, env.VideoID)
	default:
		logger.Warn("Unknown video event type", zap.String("type", env.Type))
		return nil
	}
}

// SyncVideoToES 以数据库为准同步单个视频；视频已不存在时删除索引文档
func (s *SearchService) SyncVideoToES(ctx context.Context, videoID int64) error {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return infraES.DeleteVideo(ctx, videoID)
		}
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return infraES.SyncVideo(ctx, video)
}

// SyncVideosToES 全量同步所有视频到 ES
func (s *SearchService) SyncVideosToES(ctx context.Context) (success, failed int, err error) {
	videos, err := s.videoRepo.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list videos: %w", err)
	}

	if len(videos) == 0 {
		return 0, 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	return infraES.BulkSyncVideos(ctx, videos)
}
