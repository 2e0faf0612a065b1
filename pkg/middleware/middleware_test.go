package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	appcache "github.com/yeisme/trackvault/pkg/cache"
	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/storage/kv"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(e *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	e := gin.New()
	e.Use(RequestIDMiddleware())
	e.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, ctxPkg.GetRequestID(c.Request.Context()))
	})

	w := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 26)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	w = serve(e, req)
	assert.Equal(t, "client-id", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "client-id", w.Body.String())

	assert.NotEqual(t, NewRequestID(), NewRequestID())
}

func TestRateLimitMiddleware(t *testing.T) {
	e := gin.New()
	e.Use(RateLimitMiddleware(configs.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1, Key: "global"}))
	e.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	w := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests.", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	t.Run("per header", func(t *testing.T) {
		e := gin.New()
		e.Use(RateLimitMiddleware(configs.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1, Key: "header:X-Client"}))
		e.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		as := func(client string) int {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Client", client)

			return serve(e, req).Code
		}

		assert.Equal(t, http.StatusOK, as("a"))
		assert.Equal(t, http.StatusOK, as("b"))
		assert.Equal(t, http.StatusTooManyRequests, as("a"))
	})
}

func TestKeyedLimitersEvictIdle(t *testing.T) {
	k := newKeyedLimiters(1, 1)
	start := time.Now()

	for i := range limiterSweepAt {
		k.allow(itoaKey(i), start)
	}

	require.Len(t, k.byKey, limiterSweepAt)

	assert.True(t, k.allow("fresh", start.Add(limiterIdle+time.Second)))
	assert.Len(t, k.byKey, 1)
}

func itoaKey(i int) string {
	return "k" + strconv.Itoa(i)
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	e := gin.New()
	e.Use(CircuitBreakerMiddleware(configs.CircuitBreakerConfig{
		Enabled:          true,
		FailureRate:      0.5,
		MinRequests:      2,
		Window:           time.Minute,
		OpenTimeout:      time.Minute,
		HalfOpenRequests: 1,
	}))

	calls := 0
	e.GET("/", func(c *gin.Context) {
		calls++
		c.String(http.StatusInternalServerError, "boom")
	})

	for range 2 {
		w := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "boom", w.Body.String())
	}

	// 熔断打开后不再调用处理器
	w := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 2, calls)
}

func TestResponseCacheInvalidation(t *testing.T) {
	store, err := kv.NewMemoryKV(context.Background(), nil)
	require.NoError(t, err)

	c := NewResponseCache(store, configs.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "test:"})
	require.NotNil(t, c)
	assert.Nil(t, NewResponseCache(store, configs.CacheConfig{Enabled: false}))

	version := 1

	e := gin.New()
	e.GET("/items", ResponseCache(c, 0), func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"version": version}) })
	e.POST("/items", InvalidateCache(c), func(ctx *gin.Context) {
		version++
		ctx.Status(http.StatusCreated)
	})
	e.POST("/fail", InvalidateCache(c), func(ctx *gin.Context) { ctx.Status(http.StatusBadRequest) })

	first := serve(e, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"version":1}`, first.Body.String())

	version = 5
	cached := serve(e, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.Equal(t, "HIT", cached.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"version":1}`, cached.Body.String())
	require.NotEmpty(t, cached.Header().Get("ETag"))

	conditional := httptest.NewRequest(http.MethodGet, "/items", nil)
	conditional.Header.Set("If-None-Match", cached.Header().Get("ETag"))
	assert.Equal(t, http.StatusNotModified, serve(e, conditional).Code)

	bypass := httptest.NewRequest(http.MethodGet, "/items", nil)
	bypass.Header.Set("X-Cache-Bypass", "1")
	assert.JSONEq(t, `{"version":5}`, serve(e, bypass).Body.String())

	// 失败的写请求不清空缓存
	serve(e, httptest.NewRequest(http.MethodPost, "/fail", nil))
	assert.Equal(t, "HIT", serve(e, httptest.NewRequest(http.MethodGet, "/items", nil)).Header().Get("X-Cache"))

	serve(e, httptest.NewRequest(http.MethodPost, "/items", nil))

	fresh := serve(e, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.Equal(t, "MISS", fresh.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"version":6}`, fresh.Body.String())

	// 不同 host 使用不同的缓存键
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Host = "other.example"
	assert.Equal(t, "MISS", serve(e, req).Header().Get("X-Cache"))

	var nilCache *appcache.Cache
	passthrough := gin.New()
	passthrough.GET("/", ResponseCache(nilCache, 0), func(ctx *gin.Context) { ctx.String(http.StatusOK, "x") })
	assert.Empty(t, serve(passthrough, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get("X-Cache"))
}

func TestTracingMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	e := gin.New()
	e.Use(TracingMiddleware())
	e.GET("/items/:id", func(c *gin.Context) {
		if c.Param("id") == "bad" {
			c.String(http.StatusBadRequest, "no")
			return
		}

		c.String(http.StatusInternalServerError, "boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	serve(e, req)
	serve(e, httptest.NewRequest(http.MethodGet, "/items/bad", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "GET /items/:id", spans[0].Name())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	// 4xx 不标记为错误
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

func TestRequestScheme(t *testing.T) {
	cases := map[string]string{
		"":                 "http",
		"https":            "https",
		" HTTPS , http":    "https",
		"http":             "http",
		"javascript":       "http",
		"ftp, https":       "http",
		"https://evil.com": "http",
	}

	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(ForwardedProtoHeader, header)
		}

		assert.Equal(t, want, RequestScheme(req), "header %q", header)
	}

	tlsReq := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	assert.Equal(t, "https", RequestScheme(tlsReq))

	tlsReq.Header.Set(ForwardedProtoHeader, "bogus")
	assert.Equal(t, "https", RequestScheme(tlsReq))
}

func TestResponseKeyNormalisesScheme(t *testing.T) {
	req := func(proto string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/items?b=2&a=1", nil)
		r.Header.Set(ForwardedProtoHeader, proto)

		return r
	}

	assert.Equal(t, responseKey(req("https")), responseKey(req(" HTTPS, http")))
	assert.Equal(t, responseKey(httptest.NewRequest(http.MethodGet, "/items?a=1&b=2", nil)), responseKey(req("gopher")))
	assert.NotEqual(t, responseKey(req("https")), responseKey(req("http")))
}
