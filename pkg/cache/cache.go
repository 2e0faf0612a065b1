// Package cache 在 KVStore 之上提供带键前缀的泛型 JSON 缓存，响应缓存中间件基于它实现.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/trackvault/pkg/internal/storage/kv"
)

// Cache 所有键都带 prefix，Clear 只作用于该前缀.
type Cache struct {
	store  kv.KVStore
	prefix string
	group  singleflight.Group
}

type Option func(*Cache)

// WithPrefix 设置键前缀.
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

func NewCache(store kv.KVStore, opts ...Option) *Cache {
	c := &Cache{store: store}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Cache) Prefix() string { return c.prefix }

func (c *Cache) key(k string) string { return c.prefix + k }

// Get 未命中时返回 kv.ErrNotFound.
func Get[T any](ctx context.Context, c *Cache, key string) (value T, err error) {
	raw, err := c.store.Get(ctx, c.key(key))
	if err != nil {
		return value, err
	}

	if err := sonic.Unmarshal(raw, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("decode cache %s: %w", key, err)
	}

	return value, nil
}

// Set ttl 为 0 时不过期.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", key, err)
	}

	return c.store.Set(ctx, c.key(key), raw, ttl)
}

// GetOrSet 未命中时调用 load 并回填，同一进程内同一键的并发加载只执行一次.
// 回填失败不影响返回值.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, load func() (T, error), ttl time.Duration) (T, error) {
	if v, err := Get[T](ctx, c, key); err == nil {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}

		_ = Set(ctx, c, key, v, ttl)

		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.key(key))
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.store.Exists(ctx, c.key(key))
}

// Clear 删除前缀下的全部键，返回删除数量.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	keys, err := c.store.Keys(ctx, c.prefix+"*")
	if err != nil {
		return 0, err
	}

	var n int

	for _, k := range keys {
		if err := c.store.Delete(ctx, k); err != nil && !errors.Is(err, kv.ErrNotFound) {
			return n, fmt.Errorf("clear %s: %w", k, err)
		}

		n++
	}

	return n, nil
}
