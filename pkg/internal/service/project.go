package service

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/model"
	"github.com/yeisme/trackvault/pkg/internal/storage/upload"
	"github.com/yeisme/trackvault/pkg/internal/types"
	"github.com/yeisme/trackvault/pkg/metrics"
	"github.com/yeisme/trackvault/pkg/queue"
	"github.com/yeisme/trackvault/pkg/rule"
	"github.com/yeisme/trackvault/pkg/tracing"
)

// 项目接口的提示信息.
const (
	MsgDatabaseError       = "Database error occurred."
	MsgMissingFields       = "Missing required fields."
	MsgUploadFailed        = "Error uploading file."
	MsgCreateFailed        = "Error creating project."
	MsgProjectFileAdded    = "Project and file added!"
	MsgProjectAdded        = "Project added!"
	MsgEmptyName           = "Project name cannot be empty."
	MsgRenameFailed        = "Error renaming project."
	MsgRenamed             = "Project renamed successfully."
	MsgFetchFilesFailed    = "Error fetching files."
	MsgDeleteFilesFailed   = "Error deleting file records."
	MsgDeleteProjectFailed = "Error deleting project."
	MsgProjectDeleted      = "Project and files deleted!"
)

// ProjectService 项目的增删改查.
type ProjectService struct{ *Base }

func NewProjectService(c context.Context) *ProjectService { return &ProjectService{newBase(c)} }

// List 返回全部项目及其文件，File_path 改写为以 baseURL 开头的绝对 URL.
func (s *ProjectService) List(ctx context.Context, baseURL string) ([]types.ProjectItem, error) {
	var projects []model.Project

	err := s.dbClient.GetDB().WithContext(ctx).
		Preload("Files", func(tx *gorm.DB) *gorm.DB {
			return tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "File_ID"}})
		}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "Project_ID"}}).
		Find(&projects).Error
	if err != nil {
		return nil, storageError(MsgDatabaseError, err)
	}

	items := make([]types.ProjectItem, 0, len(projects))

	for _, p := range projects {
		item := types.ProjectItem{
			ProjectID:   p.ProjectID,
			ProjectName: p.ProjectName,
			ProjectDesc: p.ProjectDesc,
			UserID:      p.UserID,
			Files:       make([]types.FileItem, 0, len(p.Files)),
		}

		for _, f := range p.Files {
			item.Files = append(item.Files, types.FileItem{
				FileID:    f.FileID,
				ProjectID: f.ProjectID,
				FileDesc:  f.FileDesc,
				FileType:  f.FileType,
				FilePath:  s.fileURL(baseURL, f.FilePath),
				FileSize:  f.FileSize,
			})
		}

		// 兼容原有的扁平结构：顶层字段取第一个文件
		if len(item.Files) > 0 {
			first := item.Files[0]
			item.FilePath = &first.FilePath
			item.FileType = &first.FileType
			item.FileSize = &first.FileSize
		}

		items = append(items, item)
	}

	return items, nil
}

// Create 创建项目，可选同时保存一个上传文件.
// 文件先写入上传存储，项目与文件记录在同一事务中插入，事务失败时删除已写入的对象.
func (s *ProjectService) Create(ctx context.Context, req types.CreateProjectRequest, up *Upload) (resp types.CreateProjectResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "project.create")
	defer func() {
		metrics.ObserveOperation("project.create", err)
		tracing.EndSpan(span, err)
	}()

	if err := rule.ValidateStruct(req); err != nil {
		return resp, validationError(MsgMissingFields, err)
	}

	project := model.Project{
		ProjectName: req.ProjectName,
		ProjectDesc: req.ProjectDesc,
		UserID:      req.UserID,
	}

	var (
		saved savedUpload
		file  *model.File
	)

	if up != nil {
		if saved, err = s.saveUpload(ctx, up); err != nil {
			return resp, uploadError(MsgUploadFailed, err)
		}

		file = s.newCreateFile(saved)
	}

	err = s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		if file == nil {
			return nil
		}

		file.ProjectID = project.ProjectID

		return tx.Create(file).Error
	})
	if err != nil {
		if file != nil {
			s.discardUpload(ctx, saved.Name)
		}

		return resp, storageError(MsgCreateFailed, err)
	}

	l := ctxPkg.Logger(ctx).Info().
		Uint("project_id", project.ProjectID).
		Uint("user_id", project.UserID)

	payload := queue.ProjectCreatedPayload{
		ProjectID: project.ProjectID,
		UserID:    project.UserID,
		Name:      project.ProjectName,
	}

	resp = types.CreateProjectResponse{Message: MsgProjectAdded, ProjectID: project.ProjectID}

	if file != nil {
		resp.Message = MsgProjectFileAdded
		payload.File = fileRef(file, saved.Name)

		l = l.Str("object", saved.Name).Int64("size", file.FileSize)
	}

	l.Msg("project created")

	s.emit(ctx, s.cfg.Events.Project.Created, func(ctx context.Context, pub queue.Publisher, opts ...queue.HeaderOption) error {
		return queue.PublishProjectCreated(ctx, pub, payload, opts...)
	})

	return resp, nil
}

// newCreateFile 按配置的元数据策略构造创建项目时的文件记录.
func (s *ProjectService) newCreateFile(saved savedUpload) *model.File {
	file := &model.File{
		FileDesc: model.FileDescUploaded,
		FileType: saved.ContentType,
		FilePath: s.publicPath(saved.Name),
		FileSize: saved.Size,
	}

	if s.cfg.Upload.LegacyCreateMetadata {
		file.FileType = model.FileTypeAudio
		file.FilePath = s.sink.Location(saved.Name)
	}

	return file
}

// Rename 只更新项目名称，项目不存在时不做任何修改.
func (s *ProjectService) Rename(ctx context.Context, id uint, req types.RenameProjectRequest) (err error) {
	ctx, span := tracing.StartSpan(ctx, "project.rename")
	defer func() {
		metrics.ObserveOperation("project.rename", err)
		tracing.EndSpan(span, err)
	}()

	if err := rule.ValidateStruct(req); err != nil {
		return validationError(MsgEmptyName, err)
	}

	res := s.dbClient.GetDB().WithContext(ctx).
		Model(&model.Project{}).
		Where(map[string]any{"Project_ID": id}).
		Update("Project_name", req.ProjectName)
	if res.Error != nil {
		return storageError(MsgRenameFailed, res.Error)
	}

	ctxPkg.Logger(ctx).Info().
		Uint("project_id", id).
		Int64("affected", res.RowsAffected).
		Msg("project renamed")

	payload := queue.ProjectRenamedPayload{ProjectID: id, Name: req.ProjectName, Affected: res.RowsAffected}
	s.emit(ctx, s.cfg.Events.Project.Renamed, func(ctx context.Context, pub queue.Publisher, opts ...queue.HeaderOption) error {
		return queue.PublishProjectRenamed(ctx, pub, payload, opts...)
	})

	return nil
}

// Delete 删除项目及其全部文件.
// 文件与项目记录在同一事务中删除，提交后再删除存储对象，删除失败的对象留给清理任务.
func (s *ProjectService) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, "project.delete")
	defer func() {
		metrics.ObserveOperation("project.delete", err)
		tracing.EndSpan(span, err)
	}()

	dbx := s.dbClient.GetDB().WithContext(ctx)
	cond := map[string]any{"Project_ID": id}

	var files []model.File
	if err := dbx.Where(cond).Find(&files).Error; err != nil {
		return storageError(MsgFetchFilesFailed, err)
	}

	var filesDeleted int64

	err = dbx.Transaction(func(tx *gorm.DB) error {
		res := tx.Where(cond).Delete(&model.File{})
		if res.Error != nil {
			return storageError(MsgDeleteFilesFailed, res.Error)
		}

		filesDeleted = res.RowsAffected

		if err := tx.Where(cond).Delete(&model.Project{}).Error; err != nil {
			return storageError(MsgDeleteProjectFailed, err)
		}

		return nil
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return err
		}

		// 提交失败
		return storageError(MsgDeleteProjectFailed, err)
	}

	objects, leftovers := s.removeObjects(ctx, files)

	ctxPkg.Logger(ctx).Info().
		Uint("project_id", id).
		Int64("files_deleted", filesDeleted).
		Int("objects_removed", len(objects)).
		Strs("leftovers", leftovers).
		Msg("project deleted")

	payload := queue.ProjectDeletedPayload{
		ProjectID:    id,
		FilesDeleted: filesDeleted,
		Objects:      objects,
		Leftovers:    leftovers,
	}
	s.emit(ctx, s.cfg.Events.Project.Deleted, func(ctx context.Context, pub queue.Publisher, opts ...queue.HeaderOption) error {
		return queue.PublishProjectDeleted(ctx, pub, payload, opts...)
	})

	return nil
}

// removeObjects 删除文件记录对应的存储对象，返回已处理与删除失败的对象名.
// 对象已不存在视为成功.
func (s *ProjectService) removeObjects(ctx context.Context, files []model.File) (removed, leftovers []string) {
	rctx := context.WithoutCancel(ctx)

	for _, f := range files {
		name := upload.NameFromPath(f.FilePath)
		if !upload.ValidName(name) {
			continue
		}

		if err := s.sink.Remove(rctx, name); err != nil && !errors.Is(err, upload.ErrNotExist) {
			ctxPkg.Logger(ctx).Warn().Err(err).
				Uint("file_id", f.FileID).
				Str("object", name).
				Msg("failed to remove object, left for cleanup")

			leftovers = append(leftovers, name)

			continue
		}

		removed = append(removed, name)
	}

	return removed, leftovers
}

func fileRef(f *model.File, object string) *queue.FileRef {
	return &queue.FileRef{
		FileID:      f.FileID,
		ProjectID:   f.ProjectID,
		ObjectName:  object,
		ContentType: f.FileType,
		Size:        f.FileSize,
	}
}
