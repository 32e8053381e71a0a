package handler

import (
	"encoding/json"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/api/response"
	"casteaching-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// VideoHandler 视频 JSON API
type VideoHandler struct {
	videoService *service.VideoService
}

func NewVideoHandler(videoService *service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// List 视频列表
// @Summary 视频列表
// @Description 获取全部视频
// @Tags 视频
// @Produce json
// @Success 200 {object} response.Response{data=dto.VideoListData} "获取成功"
// @Router /videos [get]
func (h *VideoHandler) List(c *gin.Context) {
	data, err := h.videoService.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "ok", data)
}

// Get 视频详情
// @Summary 视频详情
// @Description 获取视频详情（含所属系列）
// @Tags 视频
// @Produce json
// @Param id path int true "视频ID"
// @Success 200 {object} response.Response{data=dto.VideoDetail} "获取成功"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /videos/{id} [get]
func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.FromError(c, service.ErrVideoNotFound)
		return
	}

	detail, err := h.videoService.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "ok", detail)
}

// Store 创建视频
// @Summary 创建视频
// @Description 需要 videos_manage_store 权限，创建成功后推送 video.created
// @Tags 视频
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.VideoStoreRequest true "视频信息"
// @Success 201 {object} response.Response{data=dto.VideoInfo} "创建成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 401 {object} response.ErrorResponse "未登录"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Router /videos [post]
func (h *VideoHandler) Store(c *gin.Context) {
	var req dto.VideoStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	info, err := h.videoService.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, StatusCreated, info)
}

// Update 更新视频
// @Summary 更新视频
// @Description 需要 videos_manage_update 权限；title/description/url 整体替换，serie_id 缺省时不修改
// @Tags 视频
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "视频ID"
// @Param request body dto.VideoUpdateRequest true "视频信息"
// @Success 200 {object} response.Response{data=dto.VideoInfo} "更新成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /videos/{id} [put]
func (h *VideoHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.FromError(c, service.ErrVideoNotFound)
		return
	}

	var req dto.VideoUpdateRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err == nil {
		_, req.SerieIDSet = raw["serie_id"]
	}

	info, err := h.videoService.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, StatusUpdated, info)
}

// Destroy 删除视频
// @Summary 删除视频
// @Description 需要 videos_manage_destroy 权限
// @Tags 视频
// @Produce json
// @Security BearerAuth
// @Param id path int true "视频ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /videos/{id} [delete]
func (h *VideoHandler) Destroy(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.FromError(c, service.ErrVideoNotFound)
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, StatusDeleted, nil)
}
