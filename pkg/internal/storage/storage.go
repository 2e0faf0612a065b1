// Package storage 聚合应用使用的存储资源：数据库、上传存储、KV 与消息队列.
//
// Manager 由应用在启动时创建并持有，通过中间件注入到每个请求的 context 中，
// 在进程退出时调用 Close 释放.
//
// Example:
//
//	mgr, err := storage.New(ctx, configs.GetConfig())
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close()
//
//	db := mgr.GetDBClient()
//	sink := mgr.GetUploadSink()
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/trackvault/pkg/configs"
	dbc "github.com/yeisme/trackvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/trackvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/trackvault/pkg/internal/storage/mq"
	"github.com/yeisme/trackvault/pkg/internal/storage/upload"
	nlog "github.com/yeisme/trackvault/pkg/log"
	"github.com/yeisme/trackvault/pkg/metrics"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB     *dbc.Client
	Upload upload.Sink
	KV     *kvc.Client
	MQ     *mqc.Client
}

// New 按配置初始化全部存储，任一失败时关闭已创建的资源.
func New(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	m := &Manager{}

	var err error

	if m.DB, err = dbc.New(ctx, &cfg.DB); err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}

	if cfg.Metrics.Enabled {
		if err = m.DB.RegisterGORMMetrics(cfg.DB.Database); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("init db metrics: %w", err)
		}
	}

	if m.Upload, err = upload.New(ctx, &cfg.Upload, &cfg.S3); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("init upload sink: %w", err)
	}

	if m.KV, err = kvc.New(ctx, &cfg.KV); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("init kv: %w", err)
	}

	var reg prometheus.Registerer
	if cfg.Metrics.Enabled {
		reg = metrics.GetRegistry()
	}

	if m.MQ, err = mqc.New(ctx, &cfg.MQ, reg); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("init mq: %w", err)
	}

	nlog.Logger().Info().
		Str("db", string(cfg.DB.Type)).
		Str("upload", string(cfg.Upload.Type)).
		Str("kv", cfg.KV.Type).
		Str("mq", string(cfg.MQ.Type)).
		Msg("storage manager initialized")

	return m, nil
}

// Close 依次关闭消息队列、KV、上传存储与数据库.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}

	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.Upload != nil {
		errs = append(errs, m.Upload.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetUploadSink 获取上传存储.
func (m *Manager) GetUploadSink() upload.Sink {
	return m.Upload
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}
