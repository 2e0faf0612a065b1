package handle_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appcache "github.com/yeisme/trackvault/pkg/cache"
	"github.com/yeisme/trackvault/pkg/configs"
	"github.com/yeisme/trackvault/pkg/internal/router"
	"github.com/yeisme/trackvault/pkg/internal/storage"
	"github.com/yeisme/trackvault/pkg/middleware"
)

type testServer struct {
	engine *gin.Engine
	mgr    *storage.Manager
}

// newServer 使用临时 SQLite 与临时上传目录启动完整的路由.
func newServer(t *testing.T, mutate ...func(*configs.AppConfig)) *testServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

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

	var respCache *appcache.Cache
	if cfg.Cache.Enabled {
		respCache = middleware.NewResponseCache(mgr.KV, cfg.Cache)
	}

	e := gin.New()
	e.Use(middleware.RequestIDMiddleware(), middleware.StorageMiddleware(mgr))
	router.Register(e, respCache)

	return &testServer{engine: e, mgr: mgr}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	return w
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := sonic.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	return req
}

type formFile struct {
	field       string
	name        string
	contentType string
	content     string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.name))

		if file.contentType != "" {
			h.Set("Content-Type", file.contentType)
		}

		part, err := mw.CreatePart(h)
		require.NoError(t, err)

		_, err = io.WriteString(part, file.content)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

type createResp struct {
	Message   string `json:"message"`
	ProjectID uint   `json:"projectId"`
}

type fileItem struct {
	FileID   uint   `json:"File_ID"`
	FileDesc string `json:"File_desc"`
	FileType string `json:"File_type"`
	FilePath string `json:"File_path"`
	FileSize int64  `json:"File_size"`
}

type projectItem struct {
	ProjectID   uint       `json:"Project_ID"`
	ProjectName string     `json:"Project_name"`
	ProjectDesc string     `json:"Project_desc"`
	UserID      uint       `json:"User_ID"`
	FilePath    *string    `json:"File_path"`
	FileType    *string    `json:"File_type"`
	FileSize    *int64     `json:"File_size"`
	Files       []fileItem `json:"Files"`
}

func (s *testServer) listProjects(t *testing.T) []projectItem {
	t.Helper()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	require.Equal(t, http.StatusOK, w.Code)

	return decode[[]projectItem](t, w)
}

func (s *testServer) createProject(t *testing.T, name string, file *formFile) uint {
	t.Helper()

	fields := map[string]string{"Project_name": name, "Project_desc": name + " desc", "User_ID": "7"}

	w := s.do(multipartRequest(t, http.MethodPost, "/api/projects", fields, file))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return decode[createResp](t, w).ProjectID
}

func objectName(t *testing.T, fileURL string) string {
	t.Helper()

	i := strings.LastIndex(fileURL, "/uploads/")
	require.GreaterOrEqual(t, i, 0, fileURL)

	return fileURL[i+len("/uploads/"):]
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
