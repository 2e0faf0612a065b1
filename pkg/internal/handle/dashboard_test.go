package handle_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/trackvault/pkg/internal/handle"
	"github.com/yeisme/trackvault/pkg/internal/model"
	"github.com/yeisme/trackvault/pkg/internal/types"
)

func TestGetDashboard(t *testing.T) {
	s := newServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":0,"lyricFiles":0,"audioFiles":0}`, w.Body.String())

	id := s.createProject(t, "Song", &formFile{field: "file", name: "a.mp3", contentType: "audio/mpeg", content: "a"})
	s.createProject(t, "Empty", nil)

	lyrics := &formFile{field: "file", name: "words.txt", contentType: "text/plain", content: "la"}
	require.Equal(t, http.StatusOK, s.do(multipartRequest(t, http.MethodPost, "/api/projects/"+itoa(id)+"/files", nil, lyrics)).Code)

	// 旧数据中的 "Audio" 类型同样计入音频
	require.NoError(t, s.mgr.DB.GetDB().Create(&model.File{ProjectID: id, FileDesc: "legacy", FileType: model.FileTypeAudio, FilePath: "/tmp/x.wav"}).Error)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.DashboardStats{Projects: 2, LyricFiles: 1, AudioFiles: 2}, decode[types.DashboardStats](t, w))
}

func TestGetDashboardStorageError(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.mgr.DB.GetDB().Migrator().DropTable(&model.Project{}))

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error fetching dashboard data.", w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Database error occurred.", w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	for _, component := range []string{"db", "upload", "kv", "mq"} {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/health/"+component, nil))
		require.Equal(t, http.StatusOK, w.Code, component)
		assert.Equal(t, types.HealthResponse{Component: component, Status: "ok"}, decode[types.HealthResponse](t, w))
	}

	t.Run("without storage", func(t *testing.T) {
		e := gin.New()
		e.GET("/db", handle.HealthDB)

		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/db", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", decode[types.HealthResponse](t, w).Status)
	})
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)

	t.Run("scheduler not running", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/admin/scheduler/jobs", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("cleanup", func(t *testing.T) {
		_, err := s.mgr.Upload.Save(t.Context(), "1-stray.mp3", http.NoBody, 0, "audio/mpeg")
		require.NoError(t, err)

		w := s.do(httptest.NewRequest(http.MethodPost, "/api/admin/cleanup", nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// 默认的宽限期内不会删除刚写入的对象
		report := decode[types.CleanupReport](t, w)
		assert.Empty(t, report.OrphanObjects)
	})
}
