package kv_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/trackvault/pkg/configs"
	"github.com/yeisme/trackvault/pkg/internal/storage/kv"
	"github.com/yeisme/trackvault/pkg/internal/storage/natstest"
)

// groupcache 组名在进程内必须唯一
var groupSeq atomic.Int64

type storeFactory func(t *testing.T) kv.KVStore

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) kv.KVStore {
			store, err := kv.NewKVStore(t.Context(), kv.KVTypeMemory, nil)
			require.NoError(t, err)

			return store
		},
		"groupcache": func(t *testing.T) kv.KVStore {
			store, err := kv.NewKVStore(t.Context(), kv.KVTypeGroupcache, &configs.GroupcacheKVConfig{
				Name:       fmt.Sprintf("kv-test-%d", groupSeq.Add(1)),
				CacheBytes: 8 << 20,
			})
			require.NoError(t, err)

			return store
		},
		"redis": func(t *testing.T) kv.KVStore {
			srv := miniredis.RunT(t)

			store, err := kv.NewKVStore(t.Context(), kv.KVTypeRedis, &configs.RedisKVConfig{Addr: srv.Addr()})
			require.NoError(t, err)

			return store
		},
		"nats": func(t *testing.T) kv.KVStore {
			store, err := kv.NewKVStore(t.Context(), kv.KVTypeNATS, &configs.NATSKVConfig{
				URL:    natstest.Start(t),
				Bucket: "kv-test",
			})
			require.NoError(t, err)

			return store
		},
	}
}

func TestStores(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			t.Cleanup(func() { _ = store.Close() })

			ctx := t.Context()

			_, err := store.Get(ctx, "missing")
			require.ErrorIs(t, err, kv.ErrNotFound)

			require.NoError(t, store.Set(ctx, "tv:resp:projects", []byte(`[]`), 0))
			require.NoError(t, store.Set(ctx, "tv:resp:dashboard", []byte(`{"projects":1}`), time.Minute))
			require.NoError(t, store.Set(ctx, "other", []byte("x"), 0))

			got, err := store.Get(ctx, "tv:resp:dashboard")
			require.NoError(t, err)
			assert.JSONEq(t, `{"projects":1}`, string(got))

			ok, err := store.Exists(ctx, "tv:resp:projects")
			require.NoError(t, err)
			assert.True(t, ok)

			keys, err := store.Keys(ctx, "tv:resp:*")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"tv:resp:projects", "tv:resp:dashboard"}, keys)

			require.NoError(t, store.Delete(ctx, "tv:resp:projects"))
			require.NoError(t, store.Delete(ctx, "tv:resp:projects"), "deleting twice is not an error")

			ok, err = store.Exists(ctx, "tv:resp:projects")
			require.NoError(t, err)
			assert.False(t, ok)

			all, err := store.Keys(ctx, "")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"tv:resp:dashboard", "other"}, all)
		})
	}
}

func TestRedisNativeTTL(t *testing.T) {
	srv := miniredis.RunT(t)

	store, err := kv.NewKVStore(t.Context(), kv.KVTypeRedis, &configs.RedisKVConfig{Addr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set(t.Context(), "short", []byte("v"), time.Second))
	assert.Equal(t, time.Second, srv.TTL("short"))

	srv.FastForward(2 * time.Second)

	_, err = store.Get(t.Context(), "short")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestNewFromConfig(t *testing.T) {
	cfg := configs.Default().KV
	require.Equal(t, configs.KVTypeMemory, cfg.Type)

	client, err := kv.New(context.Background(), &cfg)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, kv.KVTypeMemory, client.Type())
	assert.NoError(t, client.Ping(context.Background()))

	cfg.Type = "etcd"
	_, err = kv.New(context.Background(), &cfg)
	assert.Error(t, err)

	_, err = kv.NewKVStore(context.Background(), kv.KVTypeRedis, &configs.NATSKVConfig{})
	assert.Error(t, err, "mismatched sub config")

	assert.Equal(t,
		[]kv.KVType{kv.KVTypeGroupcache, kv.KVTypeMemory, kv.KVTypeNATS, kv.KVTypeRedis},
		kv.GetRegisteredKVTypes())
}

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	require.NoError(b, err)

	ctx := context.Background()
	payload := make([]byte, 4<<10)

	b.ReportAllocs()

	for i := 0; b.Loop(); i++ {
		key := fmt.Sprintf("bench-%d", i%1024)
		if err := store.Set(ctx, key, payload, time.Minute); err != nil {
			b.Fatal(err)
		}

		if _, err := store.Get(ctx, key); err != nil {
			b.Fatal(err)
		}
	}
}
