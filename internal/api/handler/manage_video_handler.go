package handler

import (
	"errors"
	"net/http"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/api/middleware"
	"casteaching-go/internal/service"
	"casteaching-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ManageVideosPath = "/manage/videos"

	StatusCreated = "Successfully created"
	StatusUpdated = "Successfully updated"
	StatusDeleted = "Successfully deleted"
)

// ManageVideoHandler 视频管理页面（权限由路由上的 middleware.Can 控制）
type ManageVideoHandler struct {
	videoService *service.VideoService
}

func NewManageVideoHandler(videoService *service.VideoService) *ManageVideoHandler {
	return &ManageVideoHandler{videoService: videoService}
}

// Index GET /manage/videos
func (h *ManageVideoHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := h.videoService.List(ctx)
	if err != nil {
		logger.Error("List videos failed", zap.Error(err))
		ServerErrorPage(c)
		return
	}

	series, err := h.videoService.ListSeries(ctx)
	if err != nil {
		logger.Error("List series failed", zap.Error(err))
		ServerErrorPage(c)
		return
	}

	page := newPage(c, "Videos")
	page.Videos = list.Videos
	page.Series = series
	c.HTML(http.StatusOK, "videos/manage/index.html", page)
}

// Store POST /manage/videos
func (h *ManageVideoHandler) Store(c *gin.Context) {
	var req dto.VideoStoreRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.SetFlash(c, middleware.FlashError, "Invalid video: "+err.Error())
		c.Redirect(http.StatusFound, ManageVideosPath)
		return
	}

	if _, err := h.videoService.Create(c.Request.Context(), &req); err != nil {
		logger.Error("Create video failed", zap.Error(err))
		ServerErrorPage(c)
		return
	}

	middleware.SetFlash(c, middleware.FlashStatus, StatusCreated)
	c.Redirect(http.StatusFound, ManageVideosPath)
}

// Edit GET /manage/videos/:id
func (h *ManageVideoHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		NotFoundPage(c)
		return
	}
	ctx := c.Request.Context()

	video, err := h.videoService.Get(ctx, id)
	if err != nil {
		h.renderFailure(c, id, err)
		return
	}

	series, err := h.videoService.ListSeries(ctx)
	if err != nil {
		logger.Error("List series failed", zap.Error(err))
		ServerErrorPage(c)
		return
	}

	page := newPage(c, "Edit "+video.Title)
	page.Video = video
	page.Series = series
	c.HTML(http.StatusOK, "videos/manage/edit.html", page)
}

// Update PUT /manage/videos/:id
func (h *ManageVideoHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		NotFoundPage(c)
		return
	}

	var req dto.VideoUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.SetFlash(c, middleware.FlashError, "Invalid video: "+err.Error())
		c.Redirect(http.StatusFound, ManageVideosPath)
		return
	}
	_, req.SerieIDSet = c.GetPostForm("serie_id")

	if _, err := h.videoService.Update(c.Request.Context(), id, &req); err != nil {
		h.renderFailure(c, id, err)
		return
	}

	middleware.SetFlash(c, middleware.FlashStatus, StatusUpdated)
	c.Redirect(http.StatusFound, ManageVideosPath)
}

// Destroy DELETE /manage/videos/:id
func (h *ManageVideoHandler) Destroy(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		NotFoundPage(c)
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), id); err != nil {
		h.renderFailure(c, id, err)
		return
	}

	middleware.SetFlash(c, middleware.FlashStatus, StatusDeleted)
	c.Redirect(http.StatusFound, ManageVideosPath)
}

func (h *ManageVideoHandler) renderFailure(c *gin.Context, id int64, err error) {
	if errors.Is(err, service.ErrVideoNotFound) {
		NotFoundPage(c)
		return
	}
	logger.Error("Manage video failed", zap.Int64("video_id", id), zap.Error(err))
	ServerErrorPage(c)
}
