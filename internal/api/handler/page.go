package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"casteaching-go/internal/api/middleware"
	"casteaching-go/internal/web"

	"github.com/gin-gonic/gin"
)

// newPage 构造页面数据，同时取出本会话的闪存消息
func newPage(c *gin.Context, title string) web.Page {
	user, _ := middleware.GetCurrentUser(c)
	return web.Page{
		Title: title,
		User:  user,
		Flash: middleware.PullFlash(c),
	}
}

// RenderError 输出对应状态码的错误页面
func RenderError(c *gin.Context, code int) {
	c.HTML(code, fmt.Sprintf("errors/%d.html", code), newPage(c, http.StatusText(code)))
}

// ForbiddenPage 权限不足时的页面输出，配合 middleware.Can 使用
func ForbiddenPage(c *gin.Context) {
	RenderError(c, http.StatusForbidden)
}

// NotFoundPage 未匹配路由的页面输出
func NotFoundPage(c *gin.Context) {
	RenderError(c, http.StatusNotFound)
}

// ServerErrorPage 服务器错误页面
func ServerErrorPage(c *gin.Context) {
	RenderError(c, http.StatusInternalServerError)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
