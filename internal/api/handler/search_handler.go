package handler

import (
	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/api/response"
	"casteaching-go/internal/service"
	"casteaching-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchVideos 搜索视频
// @Summary 搜索视频
// @Description 按标题/描述搜索视频，Elasticsearch 不可用时降级为数据库查询
// @Tags 搜索
// @Produce json
// @Param q query string false "搜索关键词"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.SearchVideoData} "搜索成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Router /videos/search [get]
func (h *SearchHandler) SearchVideos(c *gin.Context) {
	var req dto.SearchVideoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	data, err := h.searchService.SearchVideos(c.Request.Context(), &req)
	if err != nil {
		logger.Error("Search videos failed", zap.String("q", req.Q), zap.Error(err))
		response.InternalError(c, "search failed")
		return
	}

	response.OK(c, "ok", data)
}
