package configs

import "github.com/spf13/viper"

// S3Config S3 兼容对象存储配置，upload.type=s3 时由上传存储使用.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"   rule:"required"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"     rule:"required"`
	// Prefix 对象键前缀，允许多个实例共享同一个桶
	Prefix string `mapstructure:"prefix"`
}

func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.endpoint", "localhost:9000")
	v.SetDefault("s3.access_key", "minioadmin")
	v.SetDefault("s3.secret_key", "minioadmin")
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "trackvault")
	v.SetDefault("s3.prefix", "uploads/")
}
