package dto

import "time"

// VideoStoreRequest 创建视频请求（HTML 表单或 JSON）
type VideoStoreRequest struct {
	Title       string `form:"title" json:"title" binding:"required,max=255"`
	Description string `form:"description" json:"description"`
	URL         string `form:"url" json:"url"`
	SerieID     *int64 `form:"serie_id" json:"serie_id"`
}

// VideoUpdateRequest 更新视频请求，title/description/url 整体替换
// SerieIDSet 为 false 时不修改所属系列
type VideoUpdateRequest struct {
	Title       string `form:"title" json:"title" binding:"required,max=255"`
	Description string `form:"description" json:"description"`
	URL         string `form:"url" json:"url"`
	SerieID     *int64 `form:"serie_id" json:"serie_id"`
	SerieIDSet  bool   `form:"-" json:"-"`
}

// VideoInfo 视频信息
type VideoInfo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at"`
	Previous    *int64     `json:"previous"`
	Next        *int64     `json:"next"`
	SerieID     *int64     `json:"serie_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SerieBrief 视频详情中嵌套的系列信息
type SerieBrief struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	TeacherName     string  `json:"teacher_name"`
	TeacherPhotoURL *string `json:"teacher_photo_url"`
	ImageURL        string  `json:"image_url,omitempty"`
}

// VideoDetail 视频详情（公开页面）
type VideoDetail struct {
	VideoInfo
	Serie *SerieBrief `json:"serie,omitempty"`
}

// VideoListData 视频列表响应数据
type VideoListData struct {
	Videos []VideoInfo `json:"videos"`
	Total  int64       `json:"total"`
}
