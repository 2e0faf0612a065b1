package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/trackvault/pkg/configs"
	"github.com/yeisme/trackvault/pkg/internal/model"
	"github.com/yeisme/trackvault/pkg/internal/service"
	"github.com/yeisme/trackvault/pkg/internal/storage/upload"
	"github.com/yeisme/trackvault/pkg/internal/types"
	"github.com/yeisme/trackvault/pkg/queue"
)

func TestProjectCreate(t *testing.T) {
	t.Run("without file", func(t *testing.T) {
		ctx, mgr := setup(t)

		resp, err := service.NewProjectService(ctx).Create(ctx, types.CreateProjectRequest{
			ProjectName: "Demo", ProjectDesc: "first", UserID: 7,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, service.MsgProjectAdded, resp.Message)
		assert.Empty(t, filesOf(t, mgr, resp.ProjectID))
		assert.Empty(t, objectNames(t, mgr))
	})

	t.Run("with file", func(t *testing.T) {
		ctx, mgr := setup(t)

		resp, err := service.NewProjectService(ctx).Create(ctx, types.CreateProjectRequest{
			ProjectName: "Demo", ProjectDesc: "first", UserID: 7,
		}, newUpload("dir/song.mp3", "audio/mpeg", "ID3 fake audio"))
		require.NoError(t, err)
		assert.Equal(t, service.MsgProjectFileAdded, resp.Message)

		files := filesOf(t, mgr, resp.ProjectID)
		require.Len(t, files, 1)

		f := files[0]
		assert.Equal(t, model.FileDescUploaded, f.FileDesc)
		assert.Equal(t, "audio/mpeg", f.FileType)
		assert.Equal(t, int64(len("ID3 fake audio")), f.FileSize)
		assert.True(t, strings.HasPrefix(f.FilePath, "/uploads/"))
		assert.True(t, strings.HasSuffix(f.FilePath, "-song.mp3"))

		assert.Equal(t, []string{upload.NameFromPath(f.FilePath)}, objectNames(t, mgr))
	})

	t.Run("legacy metadata", func(t *testing.T) {
		ctx, mgr := setup(t, func(c *configs.AppConfig) { c.Upload.LegacyCreateMetadata = true })

		id := createProject(t, ctx, "Legacy", newUpload("take.wav", "audio/wav", "RIFF"))

		files := filesOf(t, mgr, id)
		require.Len(t, files, 1)
		assert.Equal(t, model.FileTypeAudio, files[0].FileType)

		name := upload.NameFromPath(files[0].FilePath)
		assert.Equal(t, mgr.Upload.Location(name), files[0].FilePath)

		items, err := service.NewProjectService(ctx).List(ctx, "http://localhost:5004")
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.NotNil(t, items[0].FilePath)
		assert.Equal(t, "http://localhost:5004/uploads/"+name, *items[0].FilePath)
	})

	t.Run("missing fields", func(t *testing.T) {
		ctx, mgr := setup(t)

		cases := []types.CreateProjectRequest{
			{ProjectDesc: "d", UserID: 1},
			{ProjectName: "   ", ProjectDesc: "d", UserID: 1},
			{ProjectName: "n", ProjectDesc: "d"},
			{ProjectName: "n", UserID: 1},
		}

		for _, req := range cases {
			_, err := service.NewProjectService(ctx).Create(ctx, req, newUpload("a.mp3", "audio/mpeg", "x"))
			require.ErrorIs(t, err, service.ErrValidation)
			assert.Equal(t, service.MsgMissingFields, service.Message(err, ""))
		}

		var count int64
		require.NoError(t, mgr.DB.GetDB().Model(&model.Project{}).Count(&count).Error)
		assert.Zero(t, count)
		assert.Empty(t, objectNames(t, mgr))
	})

	t.Run("removes upload when insert fails", func(t *testing.T) {
		ctx, mgr := setup(t)
		require.NoError(t, mgr.DB.GetDB().Migrator().DropTable(&model.Project{}))

		_, err := service.NewProjectService(ctx).Create(ctx, types.CreateProjectRequest{
			ProjectName: "n", ProjectDesc: "d", UserID: 1,
		}, newUpload("a.mp3", "audio/mpeg", "x"))
		require.ErrorIs(t, err, service.ErrStorage)
		assert.Equal(t, service.MsgCreateFailed, service.Message(err, ""))
		assert.Empty(t, objectNames(t, mgr))
	})

	t.Run("same file name twice", func(t *testing.T) {
		ctx, mgr := setup(t)

		createProject(t, ctx, "a", newUpload("same.mp3", "audio/mpeg", "1"))
		createProject(t, ctx, "b", newUpload("same.mp3", "audio/mpeg", "2"))

		assert.Len(t, objectNames(t, mgr), 2)
	})
}

func TestProjectCreatePublishesEvent(t *testing.T) {
	ctx, mgr := setup(t)

	subCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := mgr.MQ.Subscribe(subCtx, queue.TopicProjectCreated)
	require.NoError(t, err)

	id := createProject(t, ctx, "Evented", newUpload("e.mp3", "audio/mpeg", "x"))

	select {
	case msg := <-ch:
		msg.Ack()

		env, err := queue.ParseProjectCreated(msg)
		require.NoError(t, err)
		assert.Equal(t, id, env.Payload.ProjectID)
		assert.Equal(t, "Evented", env.Payload.Name)
		require.NotNil(t, env.Payload.File)
		assert.Equal(t, "audio/mpeg", env.Payload.File.ContentType)
		assert.Equal(t, configs.AppName, env.Header.Producer)
	case <-time.After(5 * time.Second):
		t.Fatal("project created event not received")
	}
}

func TestProjectList(t *testing.T) {
	ctx, _ := setup(t)

	first := createProject(t, ctx, "First", newUpload("one.mp3", "audio/mpeg", "1"))
	second := createProject(t, ctx, "Second", nil)

	require.NoError(t, service.NewFileService(ctx).Attach(ctx, first, newUpload("words.txt", "", "la la la\n")))

	items, err := service.NewProjectService(ctx).List(ctx, "https://tracks.example.com/")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, first, items[0].ProjectID)
	require.Len(t, items[0].Files, 2)
	require.NotNil(t, items[0].FilePath)
	assert.Equal(t, items[0].Files[0].FilePath, *items[0].FilePath)
	assert.True(t, strings.HasPrefix(*items[0].FilePath, "https://tracks.example.com/uploads/"))
	assert.Equal(t, "audio/mpeg", *items[0].FileType)
	assert.Equal(t, "text/plain", items[0].Files[1].FileType)

	assert.Equal(t, second, items[1].ProjectID)
	assert.Nil(t, items[1].FilePath)
	assert.Nil(t, items[1].FileType)
	assert.Nil(t, items[1].FileSize)
	assert.Empty(t, items[1].Files)
}

func TestProjectRename(t *testing.T) {
	ctx, mgr := setup(t)
	svc := service.NewProjectService(ctx)
	id := createProject(t, ctx, "Old", nil)

	require.NoError(t, svc.Rename(ctx, id, types.RenameProjectRequest{ProjectName: "New"}))

	var p model.Project
	require.NoError(t, mgr.DB.GetDB().First(&p, id).Error)
	assert.Equal(t, "New", p.ProjectName)
	assert.Equal(t, "Old desc", p.ProjectDesc)

	err := svc.Rename(ctx, id, types.RenameProjectRequest{ProjectName: "  "})
	require.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, service.MsgEmptyName, service.Message(err, ""))

	require.NoError(t, mgr.DB.GetDB().First(&p, id).Error)
	assert.Equal(t, "New", p.ProjectName)

	// 不存在的项目静默成功
	require.NoError(t, svc.Rename(ctx, 9999, types.RenameProjectRequest{ProjectName: "Ghost"}))
}

func TestProjectDelete(t *testing.T) {
	ctx, mgr := setup(t)
	svc := service.NewProjectService(ctx)

	doomed := createProject(t, ctx, "Doomed", newUpload("a.mp3", "audio/mpeg", "a"))
	require.NoError(t, service.NewFileService(ctx).Attach(ctx, doomed, newUpload("b.txt", "text/plain", "b")))

	kept := createProject(t, ctx, "Kept", newUpload("c.mp3", "audio/mpeg", "c"))
	keptObject := upload.NameFromPath(filesOf(t, mgr, kept)[0].FilePath)

	// 已经丢失的对象不影响删除
	lost := upload.NameFromPath(filesOf(t, mgr, doomed)[1].FilePath)
	require.NoError(t, mgr.Upload.Remove(ctx, lost))

	require.NoError(t, svc.Delete(ctx, doomed))

	assert.Empty(t, filesOf(t, mgr, doomed))

	var count int64
	require.NoError(t, mgr.DB.GetDB().Model(&model.Project{}).Where(map[string]any{"Project_ID": doomed}).Count(&count).Error)
	assert.Zero(t, count)

	assert.Len(t, filesOf(t, mgr, kept), 1)
	assert.Equal(t, []string{keptObject}, objectNames(t, mgr))

	// 重复删除与删除不存在的项目都成功
	require.NoError(t, svc.Delete(ctx, doomed))
	require.NoError(t, svc.Delete(ctx, 12345))
}
