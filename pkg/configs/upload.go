package configs

import "github.com/spf13/viper"

// UploadType 上传存储类型.
type UploadType string

const (
	UploadTypeLocal UploadType = "local"
	UploadTypeS3    UploadType = "s3"
)

const (
	DefaultUploadType         = UploadTypeLocal
	DefaultUploadDir          = "uploads"  // 本地存储目录
	DefaultUploadPublicPrefix = "/uploads" // 对外访问前缀
	DefaultUploadMaxSizeMB    = 100        // 单个文件最大尺寸（MB）
	DefaultUploadFormField    = "file"     // multipart 字段名
)

// UploadConfig 上传文件存储配置.
type UploadConfig struct {
	Type         UploadType `mapstructure:"type"          rule:"oneof=local s3"`
	Dir          string     `mapstructure:"dir"           rule:"required"`
	PublicPrefix string     `mapstructure:"public_prefix" rule:"required,startswith=/"`
	MaxSizeMB    int64      `mapstructure:"max_size_mb"   rule:"min=1"`
	FormField    string     `mapstructure:"form_field"    rule:"required"`
	// LegacyCreateMetadata 为 true 时，创建项目附带的文件沿用旧的元数据：
	// File_type 固定为 "Audio"，File_path 为本地文件系统路径.
	LegacyCreateMetadata bool `mapstructure:"legacy_create_metadata"`
}

// MaxSizeBytes 返回单个文件允许的最大字节数.
func (c *UploadConfig) MaxSizeBytes() int64 {
	return c.MaxSizeMB << 20
}

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.type", DefaultUploadType)
	v.SetDefault("upload.dir", DefaultUploadDir)
	v.SetDefault("upload.public_prefix", DefaultUploadPublicPrefix)
	v.SetDefault("upload.max_size_mb", DefaultUploadMaxSizeMB)
	v.SetDefault("upload.form_field", DefaultUploadFormField)
	v.SetDefault("upload.legacy_create_metadata", false)
}
