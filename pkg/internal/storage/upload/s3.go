package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/trackvault/pkg/configs"
	nlog "github.com/yeisme/trackvault/pkg/log"
)

func init() {
	RegisterFactory(configs.UploadTypeS3, func(ctx context.Context, _ *configs.UploadConfig, s3 *configs.S3Config) (Sink, error) {
		return NewS3(ctx, s3)
	})
}

// S3 基于 MinIO 客户端的 S3 兼容对象存储.
type S3 struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func NewS3(ctx context.Context, cfg *configs.S3Config) (*S3, error) {
	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			secure = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo(configs.AppName, configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.Bucket).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Msg("s3 connected")

	return &S3{client: cli, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3) key(name string) string {
	return s.prefix + name
}

// Location 返回 s3://bucket/key 形式的位置.
func (s *S3) Location(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}

// Save 上传对象，同名对象已存在时返回 ErrExist.
// 写入带 If-None-Match: *，由服务端拒绝覆盖，并发的同名上传只有一个成功.
// 预先的 StatObject 只用于在传输正文前尽早失败.
func (s *S3) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (Object, error) {
	if !ValidName(name) {
		return Object{}, ErrInvalidName
	}

	if _, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{}); err == nil {
		return Object{}, ErrExist
	} else if !isNotFound(err) {
		return Object{}, fmt.Errorf("stat %s: %w", name, err)
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	opts.SetMatchETagExcept("*")

	info, err := s.client.PutObject(ctx, s.bucket, s.key(name), r, size, opts)
	if isPreconditionFailed(err) {
		return Object{}, ErrExist
	}

	if err != nil {
		return Object{}, fmt.Errorf("put %s: %w", name, err)
	}

	return Object{Name: name, Size: info.Size, ContentType: contentType, ModTime: info.LastModified}, nil
}

// Open 打开对象，minio.Object 支持 Seek.
func (s *S3) Open(ctx context.Context, name string) (io.ReadSeekCloser, Object, error) {
	if !ValidName(name) {
		return nil, Object{}, ErrNotExist
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, Object{}, err
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()

		if isNotFound(err) {
			return nil, Object{}, ErrNotExist
		}

		return nil, Object{}, err
	}

	return obj, Object{Name: name, Size: info.Size, ContentType: info.ContentType, ModTime: info.LastModified}, nil
}

// Remove 删除对象.
func (s *S3) Remove(ctx context.Context, name string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}

	if _, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return ErrNotExist
		}

		return err
	}

	return s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
}

// List 列出前缀下的全部对象.
func (s *S3) List(ctx context.Context) ([]Object, error) {
	var objects []Object

	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects: %w", info.Err)
		}

		name := strings.TrimPrefix(info.Key, s.prefix)
		if !ValidName(name) {
			continue
		}

		objects = append(objects, Object{Name: name, Size: info.Size, ContentType: info.ContentType, ModTime: info.LastModified})
	}

	return objects, nil
}

// Ping 检查桶是否可访问.
func (s *S3) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("bucket %s not found", s.bucket)
	}

	return nil
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (s *S3) Close() error {
	return nil
}

// isPreconditionFailed 条件写入因对象已存在被拒绝.
func isPreconditionFailed(err error) bool {
	if err == nil {
		return false
	}

	resp := minio.ToErrorResponse(err)

	return resp.StatusCode == http.StatusPreconditionFailed || resp.Code == "PreconditionFailed"
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
	}

	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
