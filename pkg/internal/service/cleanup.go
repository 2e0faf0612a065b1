package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/model"
	"github.com/yeisme/trackvault/pkg/internal/storage/upload"
	"github.com/yeisme/trackvault/pkg/internal/types"
	"github.com/yeisme/trackvault/pkg/metrics"
	"github.com/yeisme/trackvault/pkg/queue"
)

// CleanupService 清理未被引用的存储对象与所属项目已不存在的文件记录.
type CleanupService struct{ *Base }

func NewCleanupService(c context.Context) *CleanupService { return &CleanupService{newBase(c)} }

// Sweep 执行一次清理，可重复执行.
// 先删除悬空的文件记录（dangling 为 true 时），再删除不被任何文件记录引用且早于 grace 的对象.
func (s *CleanupService) Sweep(ctx context.Context, grace time.Duration, dangling bool) (types.CleanupReport, error) {
	report := types.CleanupReport{OrphanObjects: []string{}}
	dbx := s.dbClient.GetDB().WithContext(ctx)

	if dangling {
		projectIDs := dbx.Model(&model.Project{}).Select("Project_ID")

		res := dbx.Where(clause.Expr{
			SQL:  "? NOT IN (?)",
			Vars: []any{clause.Column{Name: "Project_ID"}, projectIDs},
		}).Delete(&model.File{})
		if res.Error != nil {
			return report, fmt.Errorf("delete dangling files: %w", res.Error)
		}

		report.DanglingFiles = res.RowsAffected
		metrics.CleanupRemoved.WithLabelValues("file_row").Add(float64(res.RowsAffected))
	}

	var paths []string
	if err := dbx.Model(&model.File{}).Pluck("File_path", &paths).Error; err != nil {
		return report, fmt.Errorf("list file paths: %w", err)
	}

	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[upload.NameFromPath(p)] = struct{}{}
	}

	objects, err := s.sink.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list objects: %w", err)
	}

	cutoff := s.now().Add(-grace)
	l := ctxPkg.Logger(ctx)

	for _, obj := range objects {
		if _, ok := referenced[obj.Name]; ok || obj.ModTime.After(cutoff) {
			continue
		}

		if err := s.sink.Remove(ctx, obj.Name); err != nil && !errors.Is(err, upload.ErrNotExist) {
			l.Warn().Err(err).Str("object", obj.Name).Msg("failed to remove orphan object")

			report.Errors++

			continue
		}

		report.OrphanObjects = append(report.OrphanObjects, obj.Name)
	}

	metrics.CleanupRemoved.WithLabelValues("object").Add(float64(len(report.OrphanObjects)))

	l.Info().
		Int("orphan_objects", len(report.OrphanObjects)).
		Int64("dangling_files", report.DanglingFiles).
		Int("errors", report.Errors).
		Msg("cleanup finished")

	if len(report.OrphanObjects) > 0 || report.DanglingFiles > 0 {
		payload := queue.FileSweptPayload{Objects: report.OrphanObjects, DanglingFiles: report.DanglingFiles}
		s.emit(ctx, s.cfg.Events.File.Swept, func(ctx context.Context, pub queue.Publisher, opts ...queue.HeaderOption) error {
			return queue.PublishFileSwept(ctx, pub, payload, opts...)
		})
	}

	return report, nil
}
