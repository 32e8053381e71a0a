package handler

import (
	"errors"
	"net/http"

	"casteaching-go/internal/service"
	"casteaching-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VideoPageHandler 公开的视频页面
type VideoPageHandler struct {
	videoService *service.VideoService
}

func NewVideoPageHandler(videoService *service.VideoService) *VideoPageHandler {
	return &VideoPageHandler{videoService: videoService}
}

// Show GET /videos/:id
func (h *VideoPageHandler) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		NotFoundPage(c)
		return
	}

	detail, err := h.videoService.GetDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			NotFoundPage(c)
			return
		}
		logger.Error("Get video detail failed", zap.Int64("video_id", id), zap.Error(err))
		ServerErrorPage(c)
		return
	}

	page := newPage(c, detail.Title)
	page.Video = detail
	c.HTML(http.StatusOK, "videos/show.html", page)
}
