// Package handle 提供 HTTP 请求处理器，负责解析请求参数、调用 service 并写回响应.
package handle

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/service"
	"github.com/yeisme/trackvault/pkg/middleware"
	"github.com/yeisme/trackvault/pkg/rule"
)

const (
	// MsgInvalidProjectID 路径中的项目 ID 不是正整数.
	MsgInvalidProjectID = "Invalid project id."
	// MsgFileTooLarge 请求体超过上传大小限制.
	MsgFileTooLarge = "File too large."
	// MsgNotFound 资源不存在.
	MsgNotFound = "Not found."
)

// statusOf 将服务层错误分类映射为 HTTP 状态码.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail 以纯文本写回错误提示，5xx 的完整原因只记录到日志.
func fail(c *gin.Context, err error, fallback string) {
	status := statusOf(err)
	l := ctxPkg.Logger(c.Request.Context())

	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	} else {
		ev := l.Warn().Err(err).Str("path", c.FullPath())
		if fields := rule.Fields(err); len(fields) > 0 {
			ev = ev.Strs("fields", fields)
		}

		ev.Msg("request rejected")
	}

	_ = c.Error(err)
	c.String(status, service.Message(err, fallback))
}

// baseURL 返回客户端访问本服务使用的 scheme://host，用于拼接文件的绝对地址.
func baseURL(c *gin.Context) string {
	return middleware.RequestScheme(c.Request) + "://" + c.Request.Host
}

// projectID 解析路径参数 :id，非正整数时写回 400 并返回 false.
func projectID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.String(http.StatusBadRequest, MsgInvalidProjectID)
		return 0, false
	}

	return uint(id), true
}

// limitBody 按上传大小限制包装请求体，multipart 的表单字段一并计入.
func limitBody(c *gin.Context) {
	limit := configs.GetConfig().Upload.MaxSizeBytes()
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
}

// tooLarge 判断错误是否由请求体超限引起，是则写回 413.
func tooLarge(c *gin.Context, err error) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}

	ctxPkg.Logger(c.Request.Context()).Warn().Int64("limit", mbe.Limit).Msg("request body too large")
	c.String(http.StatusRequestEntityTooLarge, MsgFileTooLarge)

	return true
}

// formUpload 取出 multipart 中的上传文件，没有文件时返回 nil.
// 返回的 close 函数在处理结束后调用.
func formUpload(c *gin.Context) (*service.Upload, func(), error) {
	header, err := c.FormFile(configs.GetConfig().Upload.FormField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}

	if err != nil {
		return nil, func() {}, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return newUpload(header, f), func() { _ = f.Close() }, nil
}

func newUpload(header *multipart.FileHeader, f multipart.File) *service.Upload {
	return &service.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Content:     f,
	}
}
