package service

import (
	"context"

	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/model"
	"github.com/yeisme/trackvault/pkg/metrics"
	"github.com/yeisme/trackvault/pkg/queue"
	"github.com/yeisme/trackvault/pkg/tracing"
)

// 文件接口的提示信息.
const (
	MsgNoFile       = "No file uploaded."
	MsgFileUploaded = "File uploaded successfully."
)

// FileService 向项目追加文件.
type FileService struct{ *Base }

func NewFileService(c context.Context) *FileService { return &FileService{newBase(c)} }

// Attach 保存上传文件并插入一条 Files 记录，不检查项目是否存在.
// 插入失败时删除已写入的对象.
func (s *FileService) Attach(ctx context.Context, projectID uint, up *Upload) (err error) {
	ctx, span := tracing.StartSpan(ctx, "file.attach")
	defer func() {
		metrics.ObserveOperation("file.attach", err)
		tracing.EndSpan(span, err)
	}()

	if up == nil || up.Content == nil {
		return validationError(MsgNoFile, nil)
	}

	saved, err := s.saveUpload(ctx, up)
	if err != nil {
		return uploadError(MsgUploadFailed, err)
	}

	file := model.File{
		ProjectID: projectID,
		FileDesc:  model.FileDescAdditional,
		FileType:  saved.ContentType,
		FilePath:  s.publicPath(saved.Name),
		FileSize:  saved.Size,
	}

	if err := s.dbClient.GetDB().WithContext(ctx).Create(&file).Error; err != nil {
		s.discardUpload(ctx, saved.Name)

		return uploadError(MsgUploadFailed, err)
	}

	ctxPkg.Logger(ctx).Info().
		Uint("project_id", projectID).
		Uint("file_id", file.FileID).
		Str("object", saved.Name).
		Str("type", file.FileType).
		Int64("size", file.FileSize).
		Msg("file attached")

	payload := queue.FileAttachedPayload{File: *fileRef(&file, saved.Name)}
	s.emit(ctx, s.cfg.Events.File.Attached, func(ctx context.Context, pub queue.Publisher, opts ...queue.HeaderOption) error {
		return queue.PublishFileAttached(ctx, pub, payload, opts...)
	})

	return nil
}
