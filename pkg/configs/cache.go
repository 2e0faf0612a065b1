package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CacheConfig GET 响应缓存配置，缓存数据写入 KV 存储.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
}

func (c *CacheConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", "10s")
	v.SetDefault("cache.prefix", "trackvault:resp:")
}
