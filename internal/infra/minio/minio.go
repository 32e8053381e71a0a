package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"casteaching-go/internal/config"
	"casteaching-go/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var client *minio.Client

// NewClient 创建 MinIO 客户端（不访问网络）
// 显式设置 Region，签名时无需查询 bucket 所在区域
func NewClient(cfg *config.MinIOConfig) (*minio.Client, error) {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return c, nil
}

// Init 初始化 MinIO 客户端并确保所有 Bucket 存在
func Init(cfg *config.MinIOConfig) error {
	var err error
	client, err = NewClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, bucket := range cfg.Buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			logger.Info("MinIO bucket created", zap.String("bucket", bucket))
		}
	}

	logger.Info("MinIO connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.Int("buckets", len(cfg.Buckets)),
	)

	return nil
}

// Get 获取 MinIO 客户端实例
func Get() *minio.Client {
	return client
}

// ImageResolver 将系列封面对象名转换为可访问的 URL
type ImageResolver struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewImageResolver(c *minio.Client, bucket string, expiry time.Duration) *ImageResolver {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &ImageResolver{client: c, bucket: bucket, expiry: expiry}
}

// ImageURL 已是完整 URL 的直接返回，否则生成预签名下载 URL
func (r *ImageResolver) ImageURL(ctx context.Context, objectName string) (string, error) {
	objectName = strings.TrimSpace(objectName)
	if objectName == "" {
		return "", nil
	}
	if strings.HasPrefix(objectName, "http://") || strings.HasPrefix(objectName, "https://") {
		return objectName, nil
	}
	if r == nil || r.client == nil {
		return "", fmt.Errorf("minio client not initialized")
	}

	presignedURL, err := r.client.PresignedGetObject(ctx, r.bucket, objectName, r.expiry, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned url: %w", err)
	}
	return presignedURL.String(), nil
}
