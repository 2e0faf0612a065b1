// Package service 实现项目、文件与仪表盘的业务逻辑.
//
// 服务在每个请求中通过 context 构造，依赖的数据库、上传存储与消息队列
// 均来自中间件注入的 storage.Manager.
package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/storage/db"
	"github.com/yeisme/trackvault/pkg/internal/storage/mq"
	"github.com/yeisme/trackvault/pkg/internal/storage/upload"
	"github.com/yeisme/trackvault/pkg/metrics"
)

// maxNameAttempts 同一毫秒内同名上传的最大重试次数.
const maxNameAttempts = 5

// Upload 客户端上传的单个文件.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.ReadSeeker
}

// savedUpload 已写入上传存储的对象.
type savedUpload struct {
	upload.Object

	ContentType string
}

// Base 服务公共依赖.
type Base struct {
	dbClient *db.Client
	sink     upload.Sink
	mqClient *mq.Client
	cfg      *configs.AppConfig
	now      func() time.Time
}

func newBase(c context.Context) *Base {
	return &Base{
		dbClient: ctxPkg.GetDBClient(c),
		sink:     ctxPkg.GetUploadSink(c),
		mqClient: ctxPkg.GetMQClient(c),
		cfg:      configs.GetConfig(),
		now:      time.Now,
	}
}

// saveUpload 探测 MIME 类型并按命名规则写入上传存储.
// 同名对象已存在时顺延一毫秒重新命名，写入前冲突不会消耗 Content.
func (b *Base) saveUpload(ctx context.Context, up *Upload) (savedUpload, error) {
	ctype, err := upload.ContentType(up.ContentType, up.Content)
	if err != nil {
		return savedUpload{}, err
	}

	now := b.now()

	for i := range maxNameAttempts {
		name := upload.NewObjectName(now.Add(time.Duration(i)*time.Millisecond), up.Filename)

		obj, err := b.sink.Save(ctx, name, up.Content, up.Size, ctype)
		if errors.Is(err, upload.ErrExist) {
			continue
		}

		if err != nil {
			return savedUpload{}, err
		}

		metrics.UploadBytes.Add(float64(obj.Size))

		return savedUpload{Object: obj, ContentType: ctype}, nil
	}

	return savedUpload{}, upload.ErrExist
}

// discardUpload 补偿：删除已写入但未能登记到数据库的对象.
func (b *Base) discardUpload(ctx context.Context, name string) {
	// 请求可能已被取消，补偿删除不能跟随请求 context
	if err := b.sink.Remove(context.WithoutCancel(ctx), name); err != nil && !errors.Is(err, upload.ErrNotExist) {
		ctxPkg.Logger(ctx).Warn().Err(err).Str("object", name).Msg("failed to remove upload after db failure")
	}
}

// publicPath 返回对象写入 File_path 的对外路径.
func (b *Base) publicPath(name string) string {
	return upload.PublicPath(b.cfg.Upload.PublicPrefix, name)
}

// fileURL 将存储的 File_path 改写为绝对 URL.
// 已是对外路径的保持不变，本地绝对路径或 s3:// URI 按对象名映射到对外路径.
func (b *Base) fileURL(baseURL, stored string) string {
	if stored == "" {
		return ""
	}

	prefix := strings.TrimRight(b.cfg.Upload.PublicPrefix, "/")

	p := stored
	if !strings.HasPrefix(stored, prefix+"/") {
		p = upload.PublicPath(prefix, upload.NameFromPath(stored))
	}

	return strings.TrimRight(baseURL, "/") + p
}
