// Package kv 提供用于键值存储的接口和实现，主要承载 GET 响应缓存.
package kv

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"
	"time"

	"github.com/yeisme/trackvault/pkg/configs"
)

// ErrNotFound 键不存在或已过期.
var ErrNotFound = errors.New("kv: key not found")

// Client 包装具体的 KVStore 实现.
type Client struct {
	KVStore

	typ KVType
}

// KVStore 定义键值存储接口.
type KVStore interface {
	// Get 获取键的值，不存在时返回 ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值，可选过期时间.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键.
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 获取匹配 glob 模式的键（用于调试）.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Close 关闭存储连接.
	Close() error
}

// KVType 键值存储类型.
type KVType string

const (
	KVTypeMemory     KVType = configs.KVTypeMemory
	KVTypeRedis      KVType = configs.KVTypeRedis
	KVTypeNATS       KVType = configs.KVTypeNATS
	KVTypeGroupcache KVType = configs.KVTypeGroupcache
)

// KVFactory 由各实现在 init 中注册，config 为对应的子配置指针，内存实现为 nil.
type KVFactory func(ctx context.Context, config any) (KVStore, error)

var kvFactories = map[KVType]KVFactory{}

func RegisterKVFactory(kvType KVType, factory KVFactory) {
	kvFactories[kvType] = factory
}

// GetRegisteredKVTypes 按名称排序返回已注册的类型，取决于构建时包含的实现.
func GetRegisteredKVTypes() []KVType {
	return slices.Sorted(maps.Keys(kvFactories))
}

func NewKVStore(ctx context.Context, kvType KVType, config any) (KVStore, error) {
	factory, ok := kvFactories[kvType]
	if !ok {
		return nil, fmt.Errorf("kv type %q not registered (have %v)", kvType, GetRegisteredKVTypes())
	}

	return factory(ctx, config)
}

// New 按 cfg.Type 选择实现，只把该实现的子配置传给工厂.
func New(ctx context.Context, cfg *configs.KVConfig) (*Client, error) {
	kvType := KVType(cfg.Type)

	sub := map[KVType]any{
		KVTypeRedis:      &cfg.Redis,
		KVTypeNATS:       &cfg.NATS,
		KVTypeGroupcache: &cfg.Groupcache,
	}[kvType]

	store, err := NewKVStore(ctx, kvType, sub)
	if err != nil {
		return nil, fmt.Errorf("kv %s: %w", kvType, err)
	}

	return &Client{KVStore: store, typ: kvType}, nil
}

// Type 返回当前 KV 实现类型.
func (c *Client) Type() KVType {
	return c.typ
}

// Ping 通过一次写入与删除检查存储是否可用.
func (c *Client) Ping(ctx context.Context) error {
	const probe = configs.AppName + ":health-probe"

	if err := c.Set(ctx, probe, []byte("ok"), time.Minute); err != nil {
		return err
	}

	return c.Delete(ctx, probe)
}

// matchKey 判断键是否匹配 glob 模式，空模式匹配全部.
func matchKey(pattern, key string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}

	ok, err := path.Match(pattern, key)

	return err == nil && ok
}
