package middleware

import (
	"net/http"
	"strings"
)

const (
	MethodOverrideField  = "_method"
	MethodOverrideHeader = "X-HTTP-Method-Override"
)

// MethodOverride 允许 HTML 表单通过 _method 字段发送 PUT/PATCH/DELETE
// 需包裹在 gin.Engine 外层，路由匹配发生在任何 gin 中间件之前
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := r.Header.Get(MethodOverrideHeader)
			if method == "" && isFormRequest(r) {
				method = r.PostFormValue(MethodOverrideField)
			}

			switch method = strings.ToUpper(strings.TrimSpace(method)); method {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
