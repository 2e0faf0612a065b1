package jobs

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/storage"
	"github.com/yeisme/trackvault/pkg/scheduler"
)

func newManager(t *testing.T) *storage.Manager {
	t.Helper()

	cfg := configs.Default()
	cfg.DB.Type = configs.SQLite
	cfg.DB.Database = filepath.Join(t.TempDir(), "jobs")
	cfg.DB.AutoMigrate = true
	cfg.DB.LogLevel = "silent"
	cfg.Upload.Dir = filepath.Join(t.TempDir(), "uploads")
	configs.SetConfig(cfg)

	mgr, err := storage.New(context.Background(), &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	return mgr
}

func TestRegisterCronJobs(t *testing.T) {
	mgr := newManager(t)

	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Shutdown() })

	disabled := configs.CleanupConfig{Enabled: false, Cron: "0 3 * * *"}
	require.NoError(t, RegisterCronJobs(sched, mgr, disabled))
	assert.Empty(t, sched.GetJobInfos())

	enabled := configs.CleanupConfig{Enabled: true, Cron: "0 3 * * *", DanglingFiles: true}
	require.NoError(t, RegisterCronJobs(sched, mgr, enabled))

	info, err := sched.GetJobInfoByName(JobCleanupSweep)
	require.NoError(t, err)
	assert.Equal(t, "0 3 * * *", info.CronExpr)
	assert.Equal(t, scheduler.StatusScheduled, info.Status)

	// 重复注册报错
	require.Error(t, RegisterCronJobs(sched, mgr, enabled))
	require.Error(t, RegisterCronJobs(nil, mgr, enabled))
	require.Error(t, RegisterCronJobs(sched, nil, enabled))
}

func TestRunCleanup(t *testing.T) {
	mgr := newManager(t)
	ctx := ctxPkg.WithStorageManager(context.Background(), mgr)

	_, err := mgr.Upload.Save(ctx, "1-stray.wav", strings.NewReader("x"), 1, "audio/wav")
	require.NoError(t, err)

	report, err := RunCleanup(ctx, configs.CleanupConfig{Grace: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"1-stray.wav"}, report.OrphanObjects)

	objs, err := mgr.Upload.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, objs)
}
