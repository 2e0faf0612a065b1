package kv

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKVExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := newMemoryKV()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 5*time.Second))
	require.NoError(t, store.Set(ctx, "stale", []byte("v"), time.Second))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	now = now.Add(time.Hour)

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.Equal(t, 1, store.Len(), "stale is still held until enumerated")

	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Zero(t, store.Len())
}

func TestTTLEnvelope(t *testing.T) {
	now := time.Now()

	plain := []byte("plain")
	raw, err := sealTTL(plain, 0, now)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(raw))

	plain[0] = 'P'
	assert.Equal(t, "plain", string(raw), "sealed value must not alias the input")

	raw, err = sealTTL([]byte("boxed"), time.Minute, now)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, ttlPrefix))

	val, expired, err := openTTL(raw, now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, "boxed", string(val))

	val, expired, err = openTTL(raw, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Nil(t, val)

	_, _, err = openTTL(append(bytes.Clone(ttlPrefix), '{'), now)
	assert.Error(t, err)
}
