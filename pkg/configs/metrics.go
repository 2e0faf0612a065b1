package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标配置，指标挂在主服务的 Path 上.
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	Path           string            `mapstructure:"path"            rule:"omitempty,startswith=/"`
	RuntimeMetrics bool              `mapstructure:"runtime_metrics"` // Go runtime 与进程指标
	Labels         map[string]string `mapstructure:"labels"`          // 附加到应用指标上的常量标签
	Pprof          bool              `mapstructure:"pprof"`
}

func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.labels", map[string]string{"version": AppVersion})
	v.SetDefault("metrics.pprof", false)
}
