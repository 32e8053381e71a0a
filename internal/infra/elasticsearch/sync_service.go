package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"casteaching-go/internal/model"
	"casteaching-go/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// ESVideoDoc ES 视频文档结构
type ESVideoDoc struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	SerieID     *int64  `json:"serie_id,omitempty"`
	PublishedAt *string `json:"published_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func videoToESDoc(v *model.Video) *ESVideoDoc {
	doc := &ESVideoDoc{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		URL:         v.URL,
		SerieID:     v.SerieID,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   v.UpdatedAt.Format(time.RFC3339),
	}
	if v.PublishedAt != nil {
		ts := v.PublishedAt.Format(time.RFC3339)
		doc.PublishedAt = &ts
	}
	return doc
}

// SyncVideo 同步单个视频到 ES
func SyncVideo(ctx context.Context, v *model.Video) error {
	body, err := json.Marshal(videoToESDoc(v))
	if err != nil {
		return err
	}

	resp, err := perform(ctx, "index document", esapi.IndexRequest{
		Index:      videosIndexName,
		DocumentID: strconv.FormatInt(v.ID, 10),
		Body:       bytes.NewReader(body),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	logger.Debug("Video synced to ES", zap.Int64("video_id", v.ID))
	return nil
}

// DeleteVideo 从 ES 删除视频，文档不存在不视为错误
func DeleteVideo(ctx context.Context, videoID int64) error {
	resp, err := perform(ctx, "delete document", esapi.DeleteRequest{
		Index:      videosIndexName,
		DocumentID: strconv.FormatInt(videoID, 10),
	}, http.StatusNotFound)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	logger.Debug("Video removed from ES", zap.Int64("video_id", videoID))
	return nil
}

// BuildSearchQuery 标题/描述全文检索，按相关度再按 ID 倒序
func BuildSearchQuery(q string, from, size int) map[string]any {
	query := map[string]any{"match_all": map[string]any{}}
	if q = strings.TrimSpace(q); q != "" {
		query = map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "description"},
			},
		}
	}
	return map[string]any{
		"from":    from,
		"size":    size,
		"query":   query,
		"sort":    []any{"_score", map[string]any{"id": "desc"}},
		"_source": false,
	}
}

// SearchVideoIDs 返回命中的视频 ID（按相关度）与总数
func SearchVideoIDs(ctx context.Context, q string, from, size int) ([]int64, int64, error) {
	body, err := json.Marshal(BuildSearchQuery(q, from, size))
	if err != nil {
		return nil, 0, err
	}

	resp, err := perform(ctx, "search", esapi.SearchRequest{
		Index: []string{videosIndexName},
		Body:  bytes.NewReader(body),
	})
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]int64, 0, len(result.Hits.Hits))
	for _, h := range result.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, result.Hits.Total.Value, nil
}

// BulkSyncVideos 批量同步视频到 ES（worker 启动时全量重建）
func BulkSyncVideos(ctx context.Context, videos []model.Video) (success, failed int, err error) {
	if client == nil {
		return 0, len(videos), ErrNotInitialized
	}

	var buf strings.Builder
	for i := range videos {
		docBody, err := json.Marshal(videoToESDoc(&videos[i]))
		if err != nil {
			failed++
			continue
		}

		buf.WriteString(fmt.Sprintf(`{"index":{"_id":"%d"}}`, videos[i].ID))
		buf.WriteString("\n")
		buf.Write(docBody)
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return 0, failed, nil
	}

	resp, err := perform(ctx, "bulk index", esapi.BulkRequest{
		Index: videosIndexName,
		Body:  strings.NewReader(buf.String()),
	})
	if err != nil {
		return 0, len(videos), err
	}
	defer resp.Body.Close()

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return len(videos) - failed, failed, nil
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}
