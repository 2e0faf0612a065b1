// Package context 在 context.Context 上携带请求 ID 与存储管理器，并据此构造带关联字段的 logger.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/trackvault/pkg/internal/storage"
	dbc "github.com/yeisme/trackvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/trackvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/trackvault/pkg/internal/storage/mq"
	"github.com/yeisme/trackvault/pkg/internal/storage/upload"
	nlog "github.com/yeisme/trackvault/pkg/log"
)

type (
	requestIDKey struct{}
	managerKey   struct{}
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID 没有请求 ID 时返回空串.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, mgr)
}

// GetManager 返回注入的存储管理器，可能为 nil.
func GetManager(ctx context.Context) *storage.Manager {
	mgr, _ := ctx.Value(managerKey{}).(*storage.Manager)
	return mgr
}

// fromManager 管理器缺失时返回零值.
func fromManager[T any](ctx context.Context, get func(*storage.Manager) T) T {
	if mgr := GetManager(ctx); mgr != nil {
		return get(mgr)
	}

	var zero T

	return zero
}

func GetUploadSink(ctx context.Context) upload.Sink {
	return fromManager(ctx, (*storage.Manager).GetUploadSink)
}

func GetDBClient(ctx context.Context) *dbc.Client {
	return fromManager(ctx, (*storage.Manager).GetDBClient)
}

func GetMQClient(ctx context.Context) *mqc.Client {
	return fromManager(ctx, (*storage.Manager).GetMQClient)
}

func GetKVClient(ctx context.Context) *kvc.Client {
	return fromManager(ctx, (*storage.Manager).GetKVClient)
}

// GetTraceID 当前 span 的 trace id，未开启追踪时为空.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}

// Logger 全局 logger 加上 request_id 与 trace_id/span_id（如果有）.
func Logger(ctx context.Context) *zerolog.Logger {
	lc := nlog.Logger().With()

	if id := GetRequestID(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		lc = lc.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}

	l := lc.Logger()

	return &l
}
