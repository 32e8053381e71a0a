package router

import (
	"net/http"
	"strings"

	"casteaching-go/internal/api/handler"
	"casteaching-go/internal/api/middleware"
	"casteaching-go/internal/api/response"
	"casteaching-go/internal/authz"
	"casteaching-go/internal/config"

	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖的全部处理器与中间件
type Handlers struct {
	VideoPage   *handler.VideoPageHandler
	ManageVideo *handler.ManageVideoHandler
	Session     *handler.SessionHandler
	Auth        *handler.AuthHandler
	Video       *handler.VideoHandler
	Search      *handler.SearchHandler

	// SessionUser 网页会话加载用户
	SessionUser middleware.SessionLoader
	// TokenUser API Token 加载用户
	TokenUser middleware.UserLoader
	Flash     middleware.FlashStore
}

// Setup 注册网页与 API 路由
func Setup(r *gin.Engine, cfg *config.Config, h *Handlers) {
	r.Use(middleware.Session(&cfg.Session, h.SessionUser, handler.ServerErrorPage))
	r.Use(middleware.Flashes(h.Flash))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, handler.ManageVideosPath)
	})

	// --- 公开页面 ---
	r.GET("/videos/:id", h.VideoPage.Show)

	// --- 登录 ---
	r.GET(handler.LoginPath, h.Session.LoginForm)
	r.POST(handler.LoginPath, h.Session.Login)
	r.POST("/logout", h.Session.Logout)

	// --- 视频管理 ---
	manage := r.Group(handler.ManageVideosPath, middleware.Authenticate(handler.LoginPath))
	{
		manage.GET("", middleware.Can(authz.ActionVideosIndex, handler.ForbiddenPage), h.ManageVideo.Index)
		manage.POST("", middleware.Can(authz.ActionVideosStore, handler.ForbiddenPage), h.ManageVideo.Store)
		manage.GET("/:id", middleware.Can(authz.ActionVideosEdit, handler.ForbiddenPage), h.ManageVideo.Edit)
		manage.PUT("/:id", middleware.Can(authz.ActionVideosUpdate, handler.ForbiddenPage), h.ManageVideo.Update)
		manage.DELETE("/:id", middleware.Can(authz.ActionVideosDestroy, handler.ForbiddenPage), h.ManageVideo.Destroy)
	}

	v1 := r.Group("/api/v1")

	// --- 认证模块 ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", middleware.AuthRequired(&cfg.JWT), h.Auth.Me)
	}

	// --- 视频模块 ---
	videos := v1.Group("/videos")
	{
		videos.GET("", h.Video.List)
		videos.GET("/search", h.Search.SearchVideos)
		videos.GET("/:id", h.Video.Get)

		videosAuth := videos.Group("", middleware.AuthRequired(&cfg.JWT), middleware.LoadUser(h.TokenUser))
		{
			videosAuth.POST("", middleware.Can(authz.ActionVideosStore, forbidden), h.Video.Store)
			videosAuth.PUT("/:id", middleware.Can(authz.ActionVideosUpdate, forbidden), h.Video.Update)
			videosAuth.DELETE("/:id", middleware.Can(authz.ActionVideosDestroy, forbidden), h.Video.Destroy)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if isAPI(c) {
			response.NotFound(c, "route not found")
			return
		}
		handler.NotFoundPage(c)
	})
}

func forbidden(c *gin.Context) {
	response.Forbidden(c, "this action is unauthorized")
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
