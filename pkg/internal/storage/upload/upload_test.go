package upload_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/trackvault/pkg/configs"
	"github.com/yeisme/trackvault/pkg/internal/storage/upload"
)

func TestNewObjectName(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)

	tests := []struct {
		client string
		want   string
	}{
		{"song.mp3", "1700000000123-song.mp3"},
		{"dir/sub/lyrics.txt", "1700000000123-lyrics.txt"},
		{`C:\Users\me\track.wav`, "1700000000123-track.wav"},
		{"", "1700000000123-upload"},
		{"../", "1700000000123-upload"},
	}

	for _, tt := range tests {
		t.Run(tt.client, func(t *testing.T) {
			name := upload.NewObjectName(now, tt.client)
			assert.Equal(t, tt.want, name)
			assert.True(t, upload.ValidName(name))
		})
	}
}

func TestNameFromPath(t *testing.T) {
	assert.Equal(t, "1-a.mp3", upload.NameFromPath("/uploads/1-a.mp3"))
	assert.Equal(t, "1_a.mp3", upload.NameFromPath("/srv/app/uploads/1_a.mp3"))
	assert.Equal(t, "1-a.mp3", upload.NameFromPath("s3://bucket/uploads/1-a.mp3"))
	assert.Equal(t, "", upload.NameFromPath(""))
	assert.Equal(t, "/uploads/x", upload.PublicPath("/uploads/", "x"))
}

func TestLocalSink(t *testing.T) {
	ctx := context.Background()
	cfg := configs.Default().Upload
	cfg.Dir = t.TempDir()

	sink, err := upload.New(ctx, &cfg, nil)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Ping(ctx))

	obj, err := sink.Save(ctx, "1-a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(5), obj.Size)
	assert.FileExists(t, filepath.Join(cfg.Dir, "1-a.txt"))
	assert.Equal(t, filepath.Join(cfg.Dir, "1-a.txt"), sink.Location("1-a.txt"))

	_, err = sink.Save(ctx, "1-a.txt", strings.NewReader("again"), 5, "text/plain")
	assert.ErrorIs(t, err, upload.ErrExist)

	_, err = sink.Save(ctx, "../escape", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, upload.ErrInvalidName)

	rc, info, err := sink.Open(ctx, "1-a.txt")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, int64(5), info.Size)

	objects, err := sink.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "1-a.txt", objects[0].Name)

	require.NoError(t, sink.Remove(ctx, "1-a.txt"))
	assert.ErrorIs(t, sink.Remove(ctx, "1-a.txt"), upload.ErrNotExist)

	_, _, err = sink.Open(ctx, "1-a.txt")
	assert.ErrorIs(t, err, upload.ErrNotExist)
}

func TestLocalSinkSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	sink, err := upload.NewLocal(dir)
	require.NoError(t, err)

	objects, err := sink.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, objects)

	_, _, err = sink.Open(context.Background(), "nested")
	assert.ErrorIs(t, err, upload.ErrNotExist)
}

func TestUnsupportedType(t *testing.T) {
	cfg := configs.Default().Upload
	cfg.Type = "ftp"

	_, err := upload.New(context.Background(), &cfg, nil)
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	declared, err := upload.ContentType("audio/mpeg", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", declared)

	withParams, err := upload.ContentType("text/plain; charset=utf-8", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", withParams)

	r := bytes.NewReader([]byte("verse one\nchorus\n"))
	sniffed, err := upload.ContentType("application/octet-stream", r)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", sniffed)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)
}
