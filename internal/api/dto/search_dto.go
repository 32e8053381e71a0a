package dto

// SearchVideoRequest 搜索请求参数
type SearchVideoRequest struct {
	Q        string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SearchVideoData 搜索结果
type SearchVideoData struct {
	Videos     []VideoInfo `json:"videos"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int64       `json:"total_pages"`
	Source     string      `json:"source"`
}
