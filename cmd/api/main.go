package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casteaching-go/internal/api/handler"
	"casteaching-go/internal/api/middleware"
	"casteaching-go/internal/api/router"
	"casteaching-go/internal/bootstrap"
	"casteaching-go/internal/config"
	"casteaching-go/internal/event"
	"casteaching-go/internal/infra/database"
	infraES "casteaching-go/internal/infra/elasticsearch"
	infraKafka "casteaching-go/internal/infra/kafka"
	infraMinio "casteaching-go/internal/infra/minio"
	infraRedis "casteaching-go/internal/infra/redis"
	infraSocketIO "casteaching-go/internal/infra/socketio"
	"casteaching-go/internal/repository"
	"casteaching-go/internal/service"
	"casteaching-go/internal/web"
	"casteaching-go/pkg/logger"

	_ "casteaching-go/api/openapi"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Casteaching API
// @version 1.0
// @description 视频课程管理平台 API 服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@casteaching.test

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	// 加载配置文件
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(database.Get()); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 初始化Redis（会话与闪存消息）
	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to init redis", zap.Error(err))
	}
	defer infraRedis.Close()

	// 初始化MinIO（可选，失败则系列封面不输出）
	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Warn("MinIO init failed, serie images disabled", zap.Error(err))
	}

	// 初始化Kafka生产者
	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	// 初始化 Elasticsearch（可选，失败则搜索降级到 DB）
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
	} else {
		defer infraES.Close()
		if err := infraES.InitIndexes(); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
	}

	// 初始化依赖（Repository -> Service -> Handler）
	db := database.Get()
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	serieRepo := repository.NewSerieRepository(db)
	sessionRepo := repository.NewSessionRepository(infraRedis.Get(), cfg.Session.Lifetime())

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := bootstrap.Run(bootCtx, userRepo, &cfg.Bootstrap); err != nil {
		bootCancel()
		logger.Fatal("Failed to bootstrap accounts", zap.Error(err))
	}
	bootCancel()

	// 实时广播与事件投递
	sio := infraSocketIO.NewServer(userRepo, &cfg.JWT, cfg.Broadcast.Channel)
	defer sio.Close()

	dispatcher := event.NewDispatcher(cfg.Broadcast.Timeout())
	dispatcher.Register("socketio", sio)
	dispatcher.Register("kafka", infraKafka.NewEventPublisher(cfg.Kafka.VideoEventsTopic()))

	images := infraMinio.NewImageResolver(infraMinio.Get(), cfg.MinIO.SeriesBucket, cfg.MinIO.URLExpiry())

	authService := service.NewAuthService(userRepo, sessionRepo, &cfg.JWT)
	videoService := service.NewVideoService(videoRepo, serieRepo, dispatcher, images)
	searchService := service.NewSearchService(videoRepo)

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 创建Gin路由器（不使用默认中间件）
	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())

	// 使用自定义中间件
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(handler.ServerErrorPage))
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// 注册基础路由
	r.GET("/healthz", healthCheckHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Socket.IO 长连接
	r.GET("/socket.io/*any", gin.WrapH(sio.GetHandler()))
	r.POST("/socket.io/*any", gin.WrapH(sio.GetHandler()))

	// 注册业务路由
	router.Setup(r, cfg, &router.Handlers{
		VideoPage:   handler.NewVideoPageHandler(videoService),
		ManageVideo: handler.NewManageVideoHandler(videoService),
		Session:     handler.NewSessionHandler(authService, &cfg.Session),
		Auth:        handler.NewAuthHandler(authService),
		Video:       handler.NewVideoHandler(videoService),
		Search:      handler.NewSearchHandler(searchService),
		SessionUser: authService.SessionUser,
		TokenUser:   authService.CurrentUser,
		Flash:       sessionRepo,
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.MethodOverride(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("minio", cfg.MinIO.Endpoint),
		zap.String("video_events", cfg.Kafka.VideoEventsTopic()),
		zap.String("channel", string(infraSocketIO.PrivateRoom(cfg.Broadcast.Channel))),
	)

	// 启动HTTP服务器
	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	// 等待尚未完成的事件投递
	dispatcher.Wait()
	logger.Info("Server stopped")
}

// healthCheckHandler 健康检查接口
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	logger.Debug("Health check requested", zap.String("ip", c.ClientIP()))

	redisStatus := gin.H{"status": "ok"}
	if latency, err := infraRedis.Ping(c.Request.Context()); err != nil {
		redisStatus = gin.H{"status": "down", "error": err.Error()}
	} else {
		redisStatus["latency_ms"] = latency.Milliseconds()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   cfg.App.Name,
		"version":   cfg.App.Version,
		"mode":      cfg.App.Mode,
		"redis":     redisStatus,
	})
}
