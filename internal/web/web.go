// Package web 内嵌的 HTML 模板与页面数据
package web

import (
	"embed"
	"html/template"
	"time"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/authz"
	"casteaching-go/internal/model"
)

//go:embed templates
var templatesFS embed.FS

// PublishedAtLayout 发布时间的展示格式，例如 January 11, 2024 15:00
const PublishedAtLayout = "January 2, 2006 15:04"

// Page 所有页面共用的模板数据
type Page struct {
	Title  string
	User   *model.User
	Flash  map[string]string
	Video  any
	Videos []dto.VideoInfo
	Series []dto.SerieBrief
	Error  string
	Email  string
}

// FuncMap 模板函数
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"publishedAt": FormatPublishedAt,
		"can": func(u *model.User, action string) bool {
			return authz.Allow(authz.SubjectFromUser(u), authz.Action(action))
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"sameSerie": func(current *int64, id int64) bool {
			return current != nil && *current == id
		},
	}
}

// FormatPublishedAt 未发布时返回空字符串
func FormatPublishedAt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(PublishedAtLayout)
}

// Templates 解析全部内嵌模板
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templatesFS,
		"templates/layouts/*.html",
		"templates/videos/*.html",
		"templates/videos/manage/*.html",
		"templates/auth/*.html",
		"templates/errors/*.html",
	)
}

// MustTemplates 解析失败直接 panic（启动阶段使用）
func MustTemplates() *template.Template {
	return template.Must(Templates())
}
