package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/trackvault/pkg/configs"
)

var (
	// HTTPPool 会注册到 http.DefaultServeMux，进程内只能创建一次
	peersOnce sync.Once
	peers     *groupcache.HTTPPool
)

// GroupcacheKV 本节点的写入保存在 local 中并作为 groupcache 的数据源，
// 其它节点的键经由对等池读取.
// groupcache 不支持删除与覆盖，本地已有的键总是直接从 local 读取.
type GroupcacheKV struct {
	local *MemoryKV
	group *groupcache.Group
}

func NewGroupcacheKV(_ context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.GroupcacheKVConfig)
	if !ok {
		return nil, fmt.Errorf("groupcache kv: unexpected config %T", config)
	}

	if groupcache.GetGroup(cfg.Name) != nil {
		return nil, fmt.Errorf("groupcache group %q already exists", cfg.Name)
	}

	g := &GroupcacheKV{local: newMemoryKV()}
	g.group = groupcache.NewGroup(cfg.Name, cfg.CacheBytes, groupcache.GetterFunc(g.load))

	if len(cfg.Peers) > 0 {
		peersOnce.Do(func() { peers = groupcache.NewHTTPPool(cfg.Self) })
		peers.Set(cfg.Peers...)
	}

	return g, nil
}

// load 对等节点请求本节点持有的键时调用，返回封装后的字节，过期由读取方判断.
func (g *GroupcacheKV) load(_ context.Context, key string, dest groupcache.Sink) error {
	sealed, ok := g.local.raw(key)
	if !ok {
		return ErrNotFound
	}

	return dest.SetBytes(sealed)
}

func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	if _, ok := g.local.raw(key); ok {
		return g.local.Get(ctx, key)
	}

	var sealed []byte
	if err := g.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&sealed)); err != nil {
		return nil, ErrNotFound
	}

	val, expired, err := openTTL(sealed, g.local.now())
	if err != nil {
		return nil, err
	}

	if expired {
		return nil, ErrNotFound
	}

	return val, nil
}

func (g *GroupcacheKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.local.Set(ctx, key, value, ttl)
}

func (g *GroupcacheKV) Delete(ctx context.Context, key string) error {
	return g.local.Delete(ctx, key)
}

func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	return g.local.Exists(ctx, key)
}

// Keys 只枚举本节点持有的键.
func (g *GroupcacheKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	return g.local.Keys(ctx, pattern)
}

func (g *GroupcacheKV) Close() error { return nil }

func init() {
	RegisterKVFactory(KVTypeGroupcache, NewGroupcacheKV)
}
