package kv

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/yeisme/trackvault/pkg/configs"
)

// NATSKV 基于 JetStream KV bucket，bucket 级 TTL 不够细，逐键过期使用 sealTTL 封装.
type NATSKV struct {
	nc     *nats.Conn
	bucket jetstream.KeyValue
	now    func() time.Time
}

// NewNATSKV 连接 NATS 并创建（或复用）bucket，config 须为 *configs.NATSKVConfig.
func NewNATSKV(ctx context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.NATSKVConfig)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("nats kv: expected *configs.NATSKVConfig, got %T", config)
	}

	opts := []nats.Option{nats.Name(configs.AppName + "-kv")}
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	url := cfg.URL
	if !strings.Contains(url, "://") {
		url = "nats://" + url
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats kv connect %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats kv jetstream: %w", err)
	}

	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: configs.AppName + " response cache",
		History:     1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats kv bucket %s: %w", cfg.Bucket, err)
	}

	return &NATSKV{nc: nc, bucket: bucket, now: time.Now}, nil
}

// bucketKey 把任意键编码成 NATS 允许的字符集（响应缓存键带冒号）.
func bucketKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// load 读取并解封值，过期的键顺手删除.
func (n *NATSKV) load(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.bucket.Get(ctx, bucketKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv get %s: %w", key, err)
	}

	val, expired, err := openTTL(entry.Value(), n.now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.bucket.Delete(ctx, bucketKey(key))
		return nil, ErrNotFound
	}

	return val, nil
}

func (n *NATSKV) Get(ctx context.Context, key string) ([]byte, error) {
	return n.load(ctx, key)
}

func (n *NATSKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	sealed, err := sealTTL(value, ttl, n.now())
	if err != nil {
		return err
	}

	if _, err := n.bucket.Put(ctx, bucketKey(key), sealed); err != nil {
		return fmt.Errorf("nats kv put %s: %w", key, err)
	}

	return nil
}

func (n *NATSKV) Delete(ctx context.Context, key string) error {
	if err := n.bucket.Delete(ctx, bucketKey(key)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete %s: %w", key, err)
	}

	return nil
}

func (n *NATSKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := n.load(ctx, key)

	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}

	return true, nil
}

// Keys 列出 bucket 内匹配 pattern 的未过期键.
func (n *NATSKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	lister, err := n.bucket.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("nats kv list: %w", err)
	}

	defer func() { _ = lister.Stop() }()

	var keys []string

	for raw := range lister.Keys() {
		decoded, err := base64.RawURLEncoding.DecodeString(raw)
		if err != nil {
			continue
		}

		key := string(decoded)
		if !matchKey(pattern, key) {
			continue
		}

		if ok, err := n.Exists(ctx, key); err == nil && ok {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func (n *NATSKV) Close() error {
	return n.nc.Drain()
}

func init() {
	RegisterKVFactory(KVTypeNATS, NewNATSKV)
}
