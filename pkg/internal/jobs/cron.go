// Package jobs 注册后台定时任务，任务本身调用 service 层完成.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/service"
	"github.com/yeisme/trackvault/pkg/internal/storage"
	"github.com/yeisme/trackvault/pkg/internal/types"
	"github.com/yeisme/trackvault/pkg/log"
	"github.com/yeisme/trackvault/pkg/scheduler"
)

// JobCleanupSweep 孤儿对象与悬空文件记录清理.
const JobCleanupSweep = "cleanup.sweep"

// RegisterCronJobs 按配置注册定时任务，cleanup.enabled 关闭时不注册清理任务.
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, cfg configs.CleanupConfig) error {
	switch {
	case sched == nil:
		return errors.New("register jobs: nil scheduler")
	case mgr == nil:
		return errors.New("register jobs: nil storage manager")
	}

	if !cfg.Enabled {
		log.Logger().Info().Str("job", JobCleanupSweep).Msg("job disabled")
		return nil
	}

	base := ctxPkg.WithStorageManager(context.Background(), mgr)

	return sched.AddCron(base, JobCleanupSweep, cfg.Cron, func(ctx context.Context) error {
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)

			defer cancel()
		}

		_, err := RunCleanup(ctx, cfg)

		return err
	})
}

// RunCleanup 执行一次清理，ctx 需携带 storage manager.
// 定时任务、管理接口与 cleanup 命令共用该入口.
func RunCleanup(ctx context.Context, cfg configs.CleanupConfig) (types.CleanupReport, error) {
	l := log.Logger().With().Str("job", JobCleanupSweep).Logger()
	start := time.Now()

	report, err := service.NewCleanupService(ctx).Sweep(ctx, cfg.Grace, cfg.DanglingFiles)
	if err != nil {
		l.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("cleanup failed")
		return report, err
	}

	ev := l.Debug()
	if len(report.OrphanObjects) > 0 || report.DanglingFiles > 0 {
		ev = l.Info()
	}

	ev.Strs("objects", report.OrphanObjects).
		Int64("dangling_files", report.DanglingFiles).
		Dur("elapsed", time.Since(start)).
		Msg("cleanup finished")

	return report, nil
}
