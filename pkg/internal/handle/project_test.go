package handle_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/trackvault/pkg/configs"
	"github.com/yeisme/trackvault/pkg/internal/model"
)

func TestCreateProject(t *testing.T) {
	s := newServer(t)

	t.Run("json without file", func(t *testing.T) {
		w := s.do(jsonRequest(http.MethodPost, "/api/projects", map[string]any{
			"Project_name": "Demo", "Project_desc": "first demo", "User_ID": 1,
		}))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[createResp](t, w)
		assert.NotZero(t, resp.ProjectID)
		assert.Equal(t, "Project added!", resp.Message)
	})

	t.Run("multipart with file", func(t *testing.T) {
		fields := map[string]string{"Project_name": "Song", "Project_desc": "with audio", "User_ID": "2"}
		file := &formFile{field: "file", name: "take1.mp3", contentType: "audio/mpeg", content: "ID3 audio"}

		w := s.do(multipartRequest(t, http.MethodPost, "/api/projects", fields, file))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "Project and file added!", decode[createResp](t, w).Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		cases := []map[string]any{
			{"Project_desc": "d", "User_ID": 1},
			{"Project_name": "n", "User_ID": 1},
			{"Project_name": "n", "Project_desc": "d"},
			{"Project_name": "   ", "Project_desc": "d", "User_ID": 1},
		}

		for _, body := range cases {
			w := s.do(jsonRequest(http.MethodPost, "/api/projects", body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Missing required fields.", w.Body.String())
		}

		// 多次失败请求不会留下任何记录
		assert.Len(t, s.listProjects(t), 2)
	})

	t.Run("non numeric user id", func(t *testing.T) {
		fields := map[string]string{"Project_name": "n", "Project_desc": "d", "User_ID": "abc"}

		w := s.do(multipartRequest(t, http.MethodPost, "/api/projects", fields, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields.", w.Body.String())
	})
}

func TestCreateProjectTooLarge(t *testing.T) {
	s := newServer(t, func(cfg *configs.AppConfig) { cfg.Upload.MaxSizeMB = 1 })

	fields := map[string]string{"Project_name": "Big", "Project_desc": "too big", "User_ID": "1"}
	file := &formFile{field: "file", name: "big.wav", content: string(make([]byte, 2<<20))}

	w := s.do(multipartRequest(t, http.MethodPost, "/api/projects", fields, file))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "File too large.", w.Body.String())
	assert.Empty(t, s.listProjects(t))
}

func TestListProjects(t *testing.T) {
	s := newServer(t)

	empty := s.createProject(t, "Empty", nil)
	withFile := s.createProject(t, "Song", &formFile{field: "file", name: "a.mp3", contentType: "audio/mpeg", content: "mp3"})

	lyrics := &formFile{field: "file", name: "lyrics.txt", contentType: "text/plain", content: "la la"}
	w := s.do(multipartRequest(t, http.MethodPost, "/api/projects/"+itoa(withFile)+"/files", nil, lyrics))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list := s.listProjects(t)
	require.Len(t, list, 2)

	assert.Equal(t, empty, list[0].ProjectID)
	assert.Nil(t, list[0].FilePath)
	assert.Nil(t, list[0].FileType)
	assert.Nil(t, list[0].FileSize)
	assert.Empty(t, list[0].Files)

	song := list[1]
	assert.Equal(t, withFile, song.ProjectID)
	assert.Equal(t, "Song", song.ProjectName)
	assert.Equal(t, uint(7), song.UserID)
	require.Len(t, song.Files, 2)
	require.NotNil(t, song.FilePath)

	// 顶层字段取第一个文件，路径为绝对 URL
	assert.Equal(t, song.Files[0].FilePath, *song.FilePath)
	assert.Regexp(t, `^http://example\.com/uploads/\d+-a\.mp3$`, *song.FilePath)
	assert.Equal(t, "audio/mpeg", *song.FileType)
	assert.Equal(t, int64(3), *song.FileSize)
	assert.Equal(t, model.FileDescAdditional, song.Files[1].FileDesc)
	assert.Equal(t, "text/plain", song.Files[1].FileType)

	t.Run("forwarded proto", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req.Header.Set("X-Forwarded-Proto", "https")

		w := s.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "https://example.com/uploads/")
	})

	t.Run("unknown forwarded proto", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req.Header.Set("X-Forwarded-Proto", "javascript")

		w := s.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "http://example.com/uploads/")
		assert.NotContains(t, w.Body.String(), "javascript:")
	})
}

func TestListProjectsLegacyPath(t *testing.T) {
	s := newServer(t, func(cfg *configs.AppConfig) { cfg.Upload.LegacyCreateMetadata = true })

	id := s.createProject(t, "Old", &formFile{field: "file", name: "old.wav", content: "RIFF"})

	var files []model.File
	require.NoError(t, s.mgr.DB.GetDB().Where(map[string]any{"Project_ID": id}).Find(&files).Error)
	require.Len(t, files, 1)
	assert.Equal(t, model.FileTypeAudio, files[0].FileType)
	assert.True(t, filepath.IsAbs(files[0].FilePath), files[0].FilePath)

	list := s.listProjects(t)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].FilePath)
	assert.Equal(t, "http://example.com/uploads/"+filepath.Base(files[0].FilePath), *list[0].FilePath)
}

func TestRenameProject(t *testing.T) {
	s := newServer(t)
	id := s.createProject(t, "Before", nil)

	w := s.do(jsonRequest(http.MethodPut, "/api/projects/"+itoa(id), map[string]string{"Project_name": "After"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Project renamed successfully.", w.Body.String())
	assert.Equal(t, "After", s.listProjects(t)[0].ProjectName)

	for _, name := range []string{"", "  \t"} {
		w := s.do(jsonRequest(http.MethodPut, "/api/projects/"+itoa(id), map[string]string{"Project_name": name}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Project name cannot be empty.", w.Body.String())
	}

	// 没有请求体按空名称处理
	w = s.do(httptest.NewRequest(http.MethodPut, "/api/projects/"+itoa(id), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, "After", s.listProjects(t)[0].ProjectName)

	// 不存在的项目静默成功
	w = s.do(jsonRequest(http.MethodPut, "/api/projects/999", map[string]string{"Project_name": "Ghost"}))
	assert.Equal(t, http.StatusOK, w.Code)

	for _, bad := range []string{"abc", "0", "-1"} {
		w := s.do(jsonRequest(http.MethodPut, "/api/projects/"+bad, map[string]string{"Project_name": "x"}))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, "Invalid project id.", w.Body.String())
	}
}

func TestDeleteProject(t *testing.T) {
	s := newServer(t)

	id := s.createProject(t, "Doomed", &formFile{field: "file", name: "x.mp3", contentType: "audio/mpeg", content: "x"})
	other := s.createProject(t, "Kept", &formFile{field: "file", name: "y.mp3", contentType: "audio/mpeg", content: "y"})

	list := s.listProjects(t)
	require.Len(t, list, 2)
	doomedObject := objectName(t, *list[0].FilePath)

	w := s.do(httptest.NewRequest(http.MethodDelete, "/api/projects/"+itoa(id), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Project and files deleted!"}`, w.Body.String())

	list = s.listProjects(t)
	require.Len(t, list, 1)
	assert.Equal(t, other, list[0].ProjectID)

	_, err := os.Stat(filepath.Join(configs.GetConfig().Upload.Dir, doomedObject))
	assert.True(t, os.IsNotExist(err))

	// 重复删除同样成功
	w = s.do(httptest.NewRequest(http.MethodDelete, "/api/projects/"+itoa(id), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(httptest.NewRequest(http.MethodDelete, "/api/projects/nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResponseCache(t *testing.T) {
	s := newServer(t, func(cfg *configs.AppConfig) {
		cfg.Cache.Enabled = true
		cfg.Cache.TTL = time.Minute
	})

	s.createProject(t, "One", nil)

	first := s.do(httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := s.do(httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	// 写操作后缓存失效
	s.createProject(t, "Two", nil)

	third := s.do(httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Len(t, decode[[]projectItem](t, third), 2)
}
