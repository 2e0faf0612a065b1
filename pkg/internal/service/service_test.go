package service_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/model"
	"github.com/yeisme/trackvault/pkg/internal/service"
	"github.com/yeisme/trackvault/pkg/internal/storage"
	"github.com/yeisme/trackvault/pkg/internal/types"
)

// setup 使用临时 SQLite 与临时目录创建 Manager，并返回注入了 Manager 的 context.
func setup(t *testing.T, mutate ...func(*configs.AppConfig)) (context.Context, *storage.Manager) {
	t.Helper()

	cfg := configs.Default()
	cfg.DB.Type = configs.SQLite
	cfg.DB.Database = filepath.Join(t.TempDir(), "test")
	cfg.DB.AutoMigrate = true
	cfg.DB.LogLevel = "silent"
	cfg.Upload.Type = configs.UploadTypeLocal
	cfg.Upload.Dir = filepath.Join(t.TempDir(), "uploads")
	cfg.Log.Level = "error"

	for _, m := range mutate {
		m(&cfg)
	}

	configs.SetConfig(cfg)

	mgr, err := storage.New(context.Background(), &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	return ctxPkg.WithStorageManager(context.Background(), mgr), mgr
}

func newUpload(name, contentType, body string) *service.Upload {
	return &service.Upload{
		Filename:    name,
		Size:        int64(len(body)),
		ContentType: contentType,
		Content:     bytes.NewReader([]byte(body)),
	}
}

func createProject(t *testing.T, ctx context.Context, name string, up *service.Upload) uint {
	t.Helper()

	resp, err := service.NewProjectService(ctx).Create(ctx, types.CreateProjectRequest{
		ProjectName: name,
		ProjectDesc: name + " desc",
		UserID:      1,
	}, up)
	require.NoError(t, err)
	require.NotZero(t, resp.ProjectID)

	return resp.ProjectID
}

func filesOf(t *testing.T, mgr *storage.Manager, projectID uint) []model.File {
	t.Helper()

	var files []model.File
	require.NoError(t, mgr.DB.GetDB().Where(map[string]any{"Project_ID": projectID}).Order("File_ID").Find(&files).Error)

	return files
}

func objectNames(t *testing.T, mgr *storage.Manager) []string {
	t.Helper()

	objs, err := mgr.Upload.List(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(objs))
	for _, o := range objs {
		names = append(names, o.Name)
	}

	return names
}
