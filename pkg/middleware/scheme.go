package middleware

import (
	"net/http"
	"strings"
)

// ForwardedProtoHeader 反向代理告知原始协议的请求头.
const ForwardedProtoHeader = "X-Forwarded-Proto"

// RequestScheme 返回客户端访问使用的协议，只会是 http 或 https.
// X-Forwarded-Proto 取第一个值，不是 http/https 时忽略，回落到连接本身是否为 TLS.
func RequestScheme(r *http.Request) string {
	if proto := r.Header.Get(ForwardedProtoHeader); proto != "" {
		first, _, _ := strings.Cut(proto, ",")

		switch p := strings.ToLower(strings.TrimSpace(first)); p {
		case "http", "https":
			return p
		}
	}

	if r.TLS != nil {
		return "https"
	}

	return "http"
}
