package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yeisme/trackvault/pkg/configs"
)

func init() {
	RegisterFactory(configs.UploadTypeLocal, func(_ context.Context, cfg *configs.UploadConfig, _ *configs.S3Config) (Sink, error) {
		return NewLocal(cfg.Dir)
	})
}

// Local 本地扁平目录存储.
type Local struct {
	dir string
}

// NewLocal 创建本地存储，目录不存在时自动创建.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Local{dir: abs}, nil
}

// Dir 返回存储目录的绝对路径.
func (l *Local) Dir() string {
	return l.dir
}

// Location 返回对象的本地绝对路径.
func (l *Local) Location(name string) string {
	return filepath.Join(l.dir, name)
}

// Save 以 O_EXCL 创建文件，写入失败时删除半成品.
func (l *Local) Save(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (Object, error) {
	if !ValidName(name) {
		return Object{}, ErrInvalidName
	}

	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	p := l.Location(name)

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return Object{}, ErrExist
	}

	if err != nil {
		return Object{}, fmt.Errorf("create %s: %w", name, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(p)
		return Object{}, fmt.Errorf("write %s: %w", name, err)
	}

	info, err := os.Stat(p)
	if err != nil {
		return Object{}, fmt.Errorf("stat %s: %w", name, err)
	}

	return Object{Name: name, Size: n, ContentType: contentType, ModTime: info.ModTime()}, nil
}

// Open 打开对象.
func (l *Local) Open(_ context.Context, name string) (io.ReadSeekCloser, Object, error) {
	if !ValidName(name) {
		return nil, Object{}, ErrNotExist
	}

	f, err := os.Open(l.Location(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Object{}, ErrNotExist
	}

	if err != nil {
		return nil, Object{}, err
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = f.Close()
		return nil, Object{}, ErrNotExist
	}

	return f, Object{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Remove 删除对象.
func (l *Local) Remove(_ context.Context, name string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}

	err := os.Remove(l.Location(name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}

	return err
}

// List 列出目录下的所有普通文件.
func (l *Local) List(ctx context.Context) ([]Object, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	objects := make([]Object, 0, len(entries))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !e.Type().IsRegular() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			// 列出与读取之间被删除
			continue
		}

		objects = append(objects, Object{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	return objects, nil
}

// Ping 检查目录是否存在且可访问.
func (l *Local) Ping(_ context.Context) error {
	info, err := os.Stat(l.dir)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", l.dir)
	}

	return nil
}

// Close 本地存储无需释放资源.
func (l *Local) Close() error {
	return nil
}
