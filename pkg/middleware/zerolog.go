package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	ctxPkg "github.com/yeisme/trackvault/pkg/context"
)

// GinLoggerMiddleware 每个请求结束后输出一条访问日志.
// 5xx 记为 error，4xx 记为 warn；路径以 quietPrefixes 开头（健康检查、指标）的成功请求不记录.
func GinLoggerMiddleware(quietPrefixes ...string) gin.HandlerFunc {
	quiet := func(path string) bool {
		for _, p := range quietPrefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}

		return false
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest && quiet(c.Request.URL.Path) {
			return
		}

		l := ctxPkg.Logger(c.Request.Context())

		var ev *zerolog.Event

		switch {
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}

		ev = ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int64("bytes_in", c.Request.ContentLength).
			Int("bytes_out", c.Writer.Size())

		if q := c.Request.URL.RawQuery; q != "" {
			ev = ev.Str("query", q)
		}

		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			ev = ev.Strs("errors", errs.Errors())
		}

		ev.Msg("HTTP request")
	}
}
