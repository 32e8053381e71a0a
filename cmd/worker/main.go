package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"casteaching-go/internal/config"
	"casteaching-go/internal/infra/database"
	infraES "casteaching-go/internal/infra/elasticsearch"
	infraKafka "casteaching-go/internal/infra/kafka"
	"casteaching-go/internal/repository"
	"casteaching-go/internal/service"
	"casteaching-go/pkg/logger"

	"go.uber.org/zap"
)

// 搜索索引同步 worker：启动时全量同步，之后消费视频事件增量同步
func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Fatal("Failed to init elasticsearch", zap.Error(err))
	}
	defer infraES.Close()

	if err := infraES.InitIndexes(); err != nil {
		logger.Fatal("Failed to init elasticsearch indexes", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	searchService := service.NewSearchService(repository.NewVideoRepository(database.Get()))

	success, failed, err := searchService.SyncVideosToES(ctx)
	if err != nil {
		logger.Error("Initial search sync failed", zap.Error(err))
	} else {
		logger.Info("Initial search sync completed",
			zap.Int("success", success),
			zap.Int("failed", failed),
		)
	}

	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "casteaching-search-sync"
	}

	logger.Info("Search sync worker started",
		zap.String("topic", cfg.Kafka.VideoEventsTopic()),
		zap.String("group", groupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	infraKafka.StartVideoEventConsumer(ctx, cfg.Kafka.Brokers, cfg.Kafka.VideoEventsTopic(), groupID, searchService.HandleVideoEvent)
}
