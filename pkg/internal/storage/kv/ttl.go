package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// ttlPrefix 标记带过期时间的值，没有该前缀的值永不过期.
var ttlPrefix = []byte("TVTTL1:")

// ttlEnvelope 后端不支持逐键 TTL 时的统一封装.
type ttlEnvelope struct {
	Value    []byte `json:"v"`
	ExpireAt int64  `json:"x"` // unix 毫秒
}

// sealTTL 返回待写入后端的字节，总是新分配，调用方可放心复用 value.
func sealTTL(value []byte, ttl time.Duration, now time.Time) ([]byte, error) {
	if ttl <= 0 {
		return bytes.Clone(value), nil
	}

	b, err := sonic.Marshal(ttlEnvelope{Value: value, ExpireAt: now.Add(ttl).UnixMilli()})
	if err != nil {
		return nil, fmt.Errorf("seal ttl value: %w", err)
	}

	return append(bytes.Clone(ttlPrefix), b...), nil
}

// openTTL 解开 sealTTL 的结果，expired 为 true 时 value 为 nil.
func openTTL(raw []byte, now time.Time) (value []byte, expired bool, err error) {
	body, ok := bytes.CutPrefix(raw, ttlPrefix)
	if !ok {
		return raw, false, nil
	}

	var env ttlEnvelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, false, fmt.Errorf("open ttl value: %w", err)
	}

	if now.UnixMilli() >= env.ExpireAt {
		return nil, true, nil
	}

	return env.Value, false, nil
}
