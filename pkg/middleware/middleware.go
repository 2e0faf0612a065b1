// Package middleware 提供 gin 中间件：请求 ID、访问日志、CORS、压缩、追踪、监控、限流、熔断、
// 存储注入与响应缓存.
package middleware

import (
	crand "crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid"

	ctxPkg "github.com/yeisme/trackvault/pkg/context"
)

// RequestIDHeader 请求 ID 的请求/响应头.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen 客户端传入的请求 ID 超过该长度时重新生成.
const maxRequestIDLen = 128

var (
	// ULID 单调熵源不是并发安全的
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(crand.Reader, 0)
)

// NewRequestID 生成一个 ULID 请求 ID.
func NewRequestID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), ulidEntropy).String()
}

// RequestIDMiddleware 沿用客户端传入的 X-Request-ID，没有时生成新的，并写入响应头与请求 context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = NewRequestID()
		}

		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(ctxPkg.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// GzipMiddleware 压缩 JSON 与文本响应，excludedPrefixes 下的路径（上传文件、指标）不压缩.
func GzipMiddleware(excludedPrefixes ...string) gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths(excludedPrefixes))
}
