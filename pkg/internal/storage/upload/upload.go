// Package upload 提供上传文件的存储抽象（Sink），支持本地目录与 S3 兼容对象存储.
//
// 所有上传都使用同一套命名规则：<unix_ms>-<原始文件名>，并通过 /uploads/<name> 对外访问.
//
// Example:
//
//	sink, err := upload.New(ctx, &cfg.Upload, &cfg.S3)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sink.Close()
//
//	name := upload.NewObjectName(time.Now(), header.Filename)
//	obj, err := sink.Save(ctx, name, src, header.Size, "audio/mpeg")
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/yeisme/trackvault/pkg/configs"
)

var (
	// ErrNotExist 对象不存在.
	ErrNotExist = errors.New("upload: object does not exist")
	// ErrExist 对象已存在.
	ErrExist = errors.New("upload: object already exists")
	// ErrInvalidName 对象名不合法（包含路径分隔符或为空）.
	ErrInvalidName = errors.New("upload: invalid object name")
)

// Object 存储对象的元数据.
type Object struct {
	Name        string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Sink 上传存储，对象以扁平的名字寻址.
type Sink interface {
	// Save 写入新对象，同名对象已存在时返回 ErrExist.
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (Object, error)
	// Open 打开对象用于读取，不存在时返回 ErrNotExist.
	Open(ctx context.Context, name string) (io.ReadSeekCloser, Object, error)
	// Remove 删除对象，不存在时返回 ErrNotExist.
	Remove(ctx context.Context, name string) error
	// List 列出全部对象.
	List(ctx context.Context) ([]Object, error)
	// Location 返回对象在后端中的物理位置（本地路径或 s3:// URI）.
	Location(name string) string
	// Ping 检查后端是否可用.
	Ping(ctx context.Context) error
	// Close 释放资源.
	Close() error
}

// Factory 创建 Sink 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.UploadConfig, s3 *configs.S3Config) (Sink, error)

var factories = map[configs.UploadType]Factory{}

// RegisterFactory 注册上传存储工厂.
func RegisterFactory(t configs.UploadType, f Factory) {
	factories[t] = f
}

// Types 返回已注册的上传存储类型.
func Types() []configs.UploadType {
	types := make([]configs.UploadType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// New 按配置创建 Sink.
func New(ctx context.Context, cfg *configs.UploadConfig, s3 *configs.S3Config) (Sink, error) {
	f, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported upload type: %s", cfg.Type)
	}

	return f(ctx, cfg, s3)
}
