package configs

import "github.com/spf13/viper"

// EventsConfig 控制领域事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool                `mapstructure:"enabled"` // 总开关
	Project ProjectEventsConfig `mapstructure:"project"`
	File    FileEventsConfig    `mapstructure:"file"`
	// Audit 是否在本进程内订阅事件并写入审计日志
	Audit bool `mapstructure:"audit"`
}

// ProjectEventsConfig 项目领域的事件开关。
type ProjectEventsConfig struct {
	Created bool `mapstructure:"created"`
	Renamed bool `mapstructure:"renamed"`
	Deleted bool `mapstructure:"deleted"`
}

// FileEventsConfig 文件领域的事件开关。
type FileEventsConfig struct {
	Attached bool `mapstructure:"attached"`
	Swept    bool `mapstructure:"swept"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统，默认 MQ 为进程内 gochannel
	v.SetDefault("events.enabled", true)
	v.SetDefault("events.audit", true)

	v.SetDefault("events.project.created", true)
	v.SetDefault("events.project.renamed", true)
	v.SetDefault("events.project.deleted", true)

	v.SetDefault("events.file.attached", true)
	// 清理任务可能一次删除大量对象，默认关闭
	v.SetDefault("events.file.swept", false)
}
