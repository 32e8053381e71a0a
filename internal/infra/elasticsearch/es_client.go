package elasticsearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"casteaching-go/internal/config"
	"casteaching-go/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

var (
	client *elasticsearch.Client
	// 视频索引名，Init 时由配置确定
	videosIndexName = "videos"
)

// ErrNotInitialized 客户端未初始化（未配置 ES 或连接失败），搜索据此降级到数据库
var ErrNotInitialized = errors.New("elasticsearch client not initialized")

// Init 初始化 Elasticsearch 客户端并记录视频索引名
func Init(cfg *config.ElasticsearchConfig) error {
	hosts := normalizeHosts(cfg.Hosts)
	if len(hosts) == 0 {
		return fmt.Errorf("elasticsearch hosts is empty")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     hosts,
		RetryOnStatus: []int{502, 503, 504},
		MaxRetries:    3,
		RetryBackoff:  func(i int) time.Duration { return time.Duration(i) * time.Second },
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", resp.String())
	}

	client = es
	videosIndexName = cfg.VideosIndex()
	logger.Info("Elasticsearch connected",
		zap.Strings("hosts", hosts),
		zap.String("videos_index", videosIndexName),
	)
	return nil
}

// 裸地址补全为 http://host:port，空项丢弃
func normalizeHosts(raw []string) []string {
	hosts := make([]string, 0, len(raw))
	for _, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "http") {
			h = "http://" + h
		}
		hosts = append(hosts, h)
	}
	return hosts
}

// Get 获取 ES 客户端
func Get() *elasticsearch.Client {
	return client
}

// VideosIndex 当前使用的视频索引名
func VideosIndex() string {
	return videosIndexName
}

// perform 执行请求，非 2xx 且不在 allowed 中的状态码视为失败
// 成功时调用方负责关闭 Body
func perform(ctx context.Context, op string, req esapi.Request, allowed ...int) (*esapi.Response, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}

	resp, err := req.Do(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		for _, code := range allowed {
			if resp.StatusCode == code {
				return resp, nil
			}
		}
		defer resp.Body.Close()
		return nil, fmt.Errorf("%s failed: %s", op, resp.String())
	}
	return resp, nil
}

// indexExists 检查索引是否存在
func indexExists(ctx context.Context, index string) (bool, error) {
	resp, err := perform(ctx, "check index", esapi.IndicesExistsRequest{Index: []string{index}}, http.StatusNotFound)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// Close 关闭连接
func Close() error {
	client = nil
	logger.Info("Elasticsearch client closed")
	return nil
}
