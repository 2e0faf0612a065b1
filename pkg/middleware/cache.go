package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/trackvault/pkg/cache"
	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/storage/kv"
)

const (
	// maxCachedBody 超过该大小的响应直接放行，不写缓存.
	maxCachedBody = 1 << 20
	defaultTTL    = 30 * time.Second
	bypassHeader  = "X-Cache-Bypass"
)

// cachedResponse 写入 KV 的响应快照.
type cachedResponse struct {
	Status      int    `json:"s"`
	ContentType string `json:"ct,omitempty"`
	Body        []byte `json:"b,omitempty"`
	ETag        string `json:"e"`
	StoredAt    int64  `json:"t"` // unix 秒
}

// NewResponseCache 按 cache 配置创建响应缓存，未启用或没有 KV 时返回 nil.
//
//	respCache := middleware.NewResponseCache(store.KV, cfg.Cache)
//	g.GET("/projects", middleware.ResponseCache(respCache, cfg.Cache.TTL), handle.ListProjects)
func NewResponseCache(store kv.KVStore, cfg configs.CacheConfig) *appcache.Cache {
	if !cfg.Enabled || store == nil {
		return nil
	}

	return appcache.NewCache(store, appcache.WithPrefix(cfg.Prefix))
}

// ResponseCache 缓存 GET/HEAD 的 200 响应，命中时带 X-Cache: HIT 与 ETag.
// c 为 nil 时直接放行；请求带 X-Cache-Bypass 或 Cache-Control: no-cache 时跳过读取.
func ResponseCache(c *appcache.Cache, ttl time.Duration) gin.HandlerFunc {
	if c == nil {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	if ttl <= 0 {
		ttl = defaultTTL
	}

	return func(ctx *gin.Context) {
		req := ctx.Request
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			ctx.Next()
			return
		}

		key := responseKey(req)

		if !skipLookup(req) {
			if hit, err := appcache.Get[cachedResponse](req.Context(), c, key); err == nil {
				replay(ctx, hit)
				return
			}
		}

		ctx.Header("X-Cache", "MISS")

		capture := &captureWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = capture
		ctx.Next()

		if ctx.Writer.Status() != http.StatusOK || capture.overflow || noStore(ctx.Writer.Header()) {
			return
		}

		body := capture.buf.Bytes()
		entry := cachedResponse{
			Status:      http.StatusOK,
			ContentType: ctx.Writer.Header().Get("Content-Type"),
			Body:        body,
			ETag:        `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`,
			StoredAt:    time.Now().Unix(),
		}

		// 同步写入，写请求随后的失效不会被这里覆盖
		if err := appcache.Set(context.WithoutCancel(req.Context()), c, key, entry, ttl); err != nil {
			ctxPkg.Logger(req.Context()).Debug().Err(err).Str("key", key).Msg("response cache store failed")
		}
	}
}

// InvalidateCache 在写请求成功后清空响应缓存.
func InvalidateCache(c *appcache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if c == nil || ctx.Writer.Status() >= http.StatusBadRequest {
			return
		}

		switch ctx.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		if _, err := c.Clear(context.WithoutCancel(ctx.Request.Context())); err != nil {
			ctxPkg.Logger(ctx.Request.Context()).Warn().Err(err).Msg("failed to invalidate response cache")
		}
	}
}

// responseKey 由方法、scheme、host、路径与排序后的 query 组成.
// 响应里的 File_path 是按 scheme 与 host 拼出的绝对 URL，所以两者必须进入键.
func responseKey(r *http.Request) string {
	scheme := RequestScheme(r)

	var b strings.Builder

	b.WriteString(r.Method)
	b.WriteByte(' ')
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(r.Host)
	b.WriteString(r.URL.Path)

	if q := r.URL.Query(); len(q) > 0 {
		b.WriteByte('?')
		b.WriteString(q.Encode())
	}

	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

func skipLookup(r *http.Request) bool {
	return r.Header.Get(bypassHeader) != "" ||
		strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache")
}

func noStore(h http.Header) bool {
	cc := strings.ToLower(h.Get("Cache-Control"))

	return strings.Contains(cc, "no-store") || strings.Contains(cc, "private")
}

// replay 把缓存的响应写回客户端，If-None-Match 匹配时返回 304.
func replay(ctx *gin.Context, hit cachedResponse) {
	h := ctx.Writer.Header()
	h.Set("X-Cache", "HIT")
	h.Set("ETag", hit.ETag)
	h.Set("Age", strconv.FormatInt(max(0, time.Now().Unix()-hit.StoredAt), 10))

	if ctx.GetHeader("If-None-Match") == hit.ETag {
		ctx.AbortWithStatus(http.StatusNotModified)
		return
	}

	if hit.ContentType != "" {
		h.Set("Content-Type", hit.ContentType)
	}

	ctx.Status(hit.Status)

	if ctx.Request.Method != http.MethodHead {
		_, _ = ctx.Writer.Write(hit.Body)
	}

	ctx.Abort()
}

// captureWriter 边写边复制响应体，超过 maxCachedBody 后停止复制.
type captureWriter struct {
	gin.ResponseWriter

	buf      bytes.Buffer
	overflow bool
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.buf.Len()+len(b) > maxCachedBody {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}

	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}
