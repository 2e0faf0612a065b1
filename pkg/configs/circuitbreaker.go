package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CircuitBreakerConfig HTTP 层熔断配置，5xx 响应计为失败.
// 统计窗口内请求数达到 MinRequests 且失败比例不低于 FailureRate 时打开，
// 打开 OpenTimeout 后进入半开，半开期间最多放行 HalfOpenRequests 个请求.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureRate      float64       `mapstructure:"failure_rate"       rule:"gte=0,lte=1"`
	MinRequests      uint32        `mapstructure:"min_requests"`
	Window           time.Duration `mapstructure:"window"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
	HalfOpenRequests uint32        `mapstructure:"half_open_requests"`
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.failure_rate", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 20)
	v.SetDefault("circuit_breaker.window", "1m")
	v.SetDefault("circuit_breaker.open_timeout", "30s")
	v.SetDefault("circuit_breaker.half_open_requests", 5)
}
