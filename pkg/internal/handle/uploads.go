package handle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/storage/upload"
)

// ServeUpload 按对象名返回上传存储中的文件，支持 Range 与条件请求.
//
//	@Summary	下载上传文件
//	@Tags		文件
//	@Produce	octet-stream
//	@Param		name	path		string	true	"对象名"
//	@Success	200		{file}		file
//	@Failure	404		{string}	string	"Not found."
//	@Router		/uploads/{name} [get]
func ServeUpload(c *gin.Context) {
	ctx := c.Request.Context()
	name := strings.TrimPrefix(c.Param("name"), "/")

	sink := ctxPkg.GetUploadSink(ctx)
	if sink == nil || !upload.ValidName(name) {
		c.String(http.StatusNotFound, MsgNotFound)
		return
	}

	rc, obj, err := sink.Open(ctx, name)
	if errors.Is(err, upload.ErrNotExist) {
		c.String(http.StatusNotFound, MsgNotFound)
		return
	}

	if err != nil {
		ctxPkg.Logger(ctx).Error().Err(err).Str("object", name).Msg("open upload failed")
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Error reading file.")

		return
	}
	defer rc.Close()

	if obj.ContentType != "" {
		c.Header("Content-Type", obj.ContentType)
	}

	http.ServeContent(c.Writer, c.Request, name, obj.ModTime, rc)
}
