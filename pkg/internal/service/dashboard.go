package service

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/clause"

	"github.com/yeisme/trackvault/pkg/internal/model"
	"github.com/yeisme/trackvault/pkg/internal/types"
)

// MsgDashboardFailed 仪表盘统计失败的提示.
const MsgDashboardFailed = "Error fetching dashboard data."

// DashboardService 仪表盘统计.
type DashboardService struct{ *Base }

func NewDashboardService(c context.Context) *DashboardService { return &DashboardService{newBase(c)} }

// Stats 并发统计项目数、歌词文件数与音频文件数，任一失败则整体失败.
func (s *DashboardService) Stats(ctx context.Context) (types.DashboardStats, error) {
	var stats types.DashboardStats

	g, gctx := errgroup.WithContext(ctx)
	dbx := s.dbClient.GetDB()
	fileType := clause.Column{Name: "File_type"}

	g.Go(func() error {
		return dbx.WithContext(gctx).Model(&model.Project{}).Count(&stats.Projects).Error
	})

	g.Go(func() error {
		return dbx.WithContext(gctx).Model(&model.File{}).
			Where(clause.Eq{Column: fileType, Value: model.FileTypeLyric}).
			Count(&stats.LyricFiles).Error
	})

	g.Go(func() error {
		return dbx.WithContext(gctx).Model(&model.File{}).
			Where(clause.Or(
				clause.Eq{Column: fileType, Value: model.FileTypeAudio},
				clause.Like{Column: fileType, Value: model.FileTypeAudioPrefix + "%"},
			)).
			Count(&stats.AudioFiles).Error
	})

	if err := g.Wait(); err != nil {
		return types.DashboardStats{}, storageError(MsgDashboardFailed, err)
	}

	return stats, nil
}
