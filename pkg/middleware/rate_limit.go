package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/trackvault/pkg/configs"
)

const (
	// limiterIdle 超过该时长未出现的 key 在下次清扫时移除.
	limiterIdle = 10 * time.Minute
	// limiterSweepAt key 数量达到该值时触发清扫.
	limiterSweepAt = 10000
)

// RateLimitMiddleware 令牌桶限流.
// key 取值: global（默认，全局共享）, ip, header:<Name>（缺失时退回客户端 IP）.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if mode == "" || mode == "global" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				tooManyRequests(c)
				return
			}

			c.Next()
		}
	}

	header, byHeader := strings.CutPrefix(mode, "header:")
	limiters := newKeyedLimiters(rate.Limit(cfg.RPS), cfg.Burst)

	return func(c *gin.Context) {
		key := ""
		if byHeader {
			key = c.GetHeader(header)
		}

		if key == "" {
			key = c.ClientIP()
		}

		if !limiters.allow(key, time.Now()) {
			tooManyRequests(c)
			return
		}

		c.Next()
	}
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiters 按 key 维护令牌桶，数量过多时淘汰闲置的 key.
type keyedLimiters struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	byKey map[string]*keyedLimiter
}

func newKeyedLimiters(limit rate.Limit, burst int) *keyedLimiters {
	return &keyedLimiters{limit: limit, burst: burst, byKey: make(map[string]*keyedLimiter)}
}

func (k *keyedLimiters) allow(key string, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.byKey) >= limiterSweepAt {
		for key, l := range k.byKey {
			if now.Sub(l.lastSeen) > limiterIdle {
				delete(k.byKey, key)
			}
		}
	}

	l, ok := k.byKey[key]
	if !ok {
		l = &keyedLimiter{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.byKey[key] = l
	}

	l.lastSeen = now

	return l.limiter.AllowN(now, 1)
}

// tooManyRequests 以纯文本返回 429，与其他接口的错误格式一致.
func tooManyRequests(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.String(http.StatusTooManyRequests, "Too many requests.")
	c.Abort()
}
