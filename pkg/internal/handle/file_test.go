package handle_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/trackvault/pkg/configs"
)

func TestAttachFile(t *testing.T) {
	s := newServer(t)
	id := s.createProject(t, "Song", nil)
	target := "/api/projects/" + itoa(id) + "/files"

	t.Run("uploads file", func(t *testing.T) {
		file := &formFile{field: "file", name: "mix.wav", contentType: "audio/wav", content: "RIFF....WAVE"}

		w := s.do(multipartRequest(t, http.MethodPost, target, nil, file))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "File uploaded successfully.", w.Body.String())

		files := s.listProjects(t)[0].Files
		require.Len(t, files, 1)
		assert.Equal(t, "audio/wav", files[0].FileType)
		assert.Equal(t, int64(12), files[0].FileSize)
		assert.Equal(t, "Additional file", files[0].FileDesc)
	})

	t.Run("no file", func(t *testing.T) {
		w := s.do(multipartRequest(t, http.MethodPost, target, map[string]string{"note": "x"}, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No file uploaded.", w.Body.String())

		// 不是 multipart 请求同样视为没有文件
		w = s.do(jsonRequest(http.MethodPost, target, map[string]string{}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No file uploaded.", w.Body.String())
	})

	t.Run("wrong field name", func(t *testing.T) {
		file := &formFile{field: "upload", name: "a.mp3", content: "x"}

		w := s.do(multipartRequest(t, http.MethodPost, target, nil, file))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		file := &formFile{field: "file", name: "a.mp3", content: "x"}

		w := s.do(multipartRequest(t, http.MethodPost, "/api/projects/abc/files", nil, file))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid project id.", w.Body.String())
	})

	t.Run("unknown project", func(t *testing.T) {
		file := &formFile{field: "file", name: "a.mp3", content: "x"}

		w := s.do(multipartRequest(t, http.MethodPost, "/api/projects/4242/files", nil, file))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAttachFileTooLarge(t *testing.T) {
	s := newServer(t, func(cfg *configs.AppConfig) { cfg.Upload.MaxSizeMB = 1 })
	id := s.createProject(t, "Song", nil)

	file := &formFile{field: "file", name: "huge.wav", content: string(make([]byte, 2<<20))}

	w := s.do(multipartRequest(t, http.MethodPost, "/api/projects/"+itoa(id)+"/files", nil, file))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, s.listProjects(t)[0].Files)
}

func TestServeUpload(t *testing.T) {
	s := newServer(t)
	s.createProject(t, "Song", &formFile{field: "file", name: "hello.txt", contentType: "text/plain", content: "hello world"})

	name := objectName(t, *s.listProjects(t)[0].FilePath)

	w := s.do(httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello world", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	t.Run("range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil)
		req.Header.Set("Range", "bytes=0-4")

		w := s.do(req)
		assert.Equal(t, http.StatusPartialContent, w.Code)
		assert.Equal(t, "hello", w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		for _, p := range []string{"/uploads/missing.mp3", "/uploads/", "/uploads/a/../b"} {
			w := s.do(httptest.NewRequest(http.MethodGet, p, nil))
			assert.Equal(t, http.StatusNotFound, w.Code, p)
		}
	})
}
