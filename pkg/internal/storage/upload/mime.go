package upload

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// octetStream 浏览器无法识别类型时声明的 MIME.
const octetStream = "application/octet-stream"

// ContentType 返回文件的 MIME 类型（不含参数）.
// 客户端声明了具体类型时直接使用，否则根据文件头部内容探测，探测后 r 会回到起始位置.
func ContentType(declared string, r io.ReadSeeker) (string, error) {
	if t := normalize(declared); t != "" && t != octetStream {
		return t, nil
	}

	m, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	return normalize(m.String()), nil
}

// normalize 去掉 MIME 参数，例如 "text/plain; charset=utf-8" -> "text/plain".
func normalize(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}

	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}

	return strings.ToLower(strings.TrimSpace(strings.SplitN(t, ";", 2)[0]))
}
