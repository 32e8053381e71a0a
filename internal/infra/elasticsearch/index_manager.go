package elasticsearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"casteaching-go/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// GetVideosIndexMapping 返回 videos 索引的 mapping
func GetVideosIndexMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0,
			"analysis": {
				"analyzer": {
					"title_analyzer": {
						"type": "custom",
						"tokenizer": "standard",
						"filter": ["lowercase", "asciifolding"]
					}
				}
			}
		},
		"mappings": {
			"properties": {
				"id": {"type": "long"},
				"title": {
					"type": "text",
					"analyzer": "title_analyzer",
					"fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
				},
				"description": {"type": "text", "analyzer": "title_analyzer"},
				"url": {"type": "keyword", "index": false},
				"serie_id": {"type": "long"},
				"published_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"updated_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
			}
		}
	}`
}

// EnsureVideosIndex 确保 videos 索引存在，不存在则创建
func EnsureVideosIndex(ctx context.Context) error {
	indexName := videosIndexName

	exists, err := indexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		logger.Info("Elasticsearch videos index already exists", zap.String("index", indexName))
		return nil
	}

	resp, err := perform(ctx, "create index", esapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(GetVideosIndexMapping()),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	logger.Info("Elasticsearch videos index created", zap.String("index", indexName))
	return nil
}

// InitIndexes 初始化所有索引（启动时调用）
func InitIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return EnsureVideosIndex(ctx)
}
