package kv

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// MemoryKV 进程内 KV，单实例部署的默认后端.
// 值以 sealTTL 封装后保存，过期键在读取或枚举时清除.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
	now  func() time.Time
}

func NewMemoryKV(_ context.Context, _ any) (KVStore, error) {
	return newMemoryKV(), nil
}

func newMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte), now: time.Now}
}

// raw 返回封装后的原始字节，不检查过期.
func (m *MemoryKV) raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.data[key]

	return b, ok
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	sealed, ok := m.raw(key)
	if !ok {
		return nil, ErrNotFound
	}

	val, expired, err := openTTL(sealed, m.now())
	if err != nil {
		return nil, err
	}

	if expired {
		m.evict(key, sealed)
		return nil, ErrNotFound
	}

	return bytes.Clone(val), nil
}

// evict 仅当键仍是 sealed 时删除，避免覆盖并发写入的新值.
func (m *MemoryKV) evict(key string, sealed []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.data[key]; ok && bytes.Equal(cur, sealed) {
		delete(m.data, key)
	}
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	sealed, err := sealTTL(value, ttl, m.now())
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data[key] = sealed
	m.mu.Unlock()

	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	return nil
}

func (m *MemoryKV) Exists(_ context.Context, key string) (bool, error) {
	sealed, ok := m.raw(key)
	if !ok {
		return false, nil
	}

	_, expired, err := openTTL(sealed, m.now())

	return err == nil && !expired, err
}

// Keys 返回匹配 pattern 的未过期键，顺带清除已过期的键.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string

	for k, sealed := range m.data {
		if _, expired, err := openTTL(sealed, now); err == nil && expired {
			delete(m.data, k)
			continue
		}

		if matchKey(pattern, k) {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

// Len 当前持有的键数量，包含尚未清除的过期键.
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

func (m *MemoryKV) Close() error { return nil }

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
