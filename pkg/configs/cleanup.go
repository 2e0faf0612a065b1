package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CleanupConfig 孤儿文件清理任务配置.
type CleanupConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"    rule:"required"`
	// Grace 上传后未被引用的对象在该时长内不会被清理，避免误删正在写库的上传
	Grace time.Duration `mapstructure:"grace"`
	// DanglingFiles 是否同时删除所属项目已不存在的文件记录.
	// 默认关闭：向不存在的项目附加文件会保留该记录，开启后这些记录会在下一次清理时被删除
	DanglingFiles bool `mapstructure:"dangling_files"`
	// Timeout 定时触发的单次清理上限，0 表示不限制
	Timeout time.Duration `mapstructure:"timeout"`
}

func (c *CleanupConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("cleanup.enabled", true)
	v.SetDefault("cleanup.cron", "0 3 * * *")
	v.SetDefault("cleanup.grace", "1h")
	v.SetDefault("cleanup.dangling_files", false)
	v.SetDefault("cleanup.timeout", "10m")
}
