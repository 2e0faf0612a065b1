package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/trackvault/pkg/internal/service"
)

// AttachFile 为已有项目追加一个文件.
//
//	@Summary		上传文件
//	@Description	保存 multipart 字段 file 中的文件并关联到项目，不检查项目是否存在
//	@Tags			文件
//	@Accept			mpfd
//	@Produce		plain
//	@Param			id		path		int		true	"项目 ID"
//	@Param			file	formData	file	true	"文件"
//	@Success		200		{string}	string	"File uploaded successfully."
//	@Failure		400		{string}	string	"No file uploaded."
//	@Failure		413		{string}	string	"File too large."
//	@Failure		500		{string}	string	"Error uploading file."
//	@Router			/api/projects/{id}/files [post]
func AttachFile(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	limitBody(c)

	up, closeUp, err := formUpload(c)
	if err != nil {
		if tooLarge(c, err) {
			return
		}

		fail(c, err, service.MsgUploadFailed)

		return
	}
	defer closeUp()

	ctx := c.Request.Context()

	if err := service.NewFileService(ctx).Attach(ctx, id, up); err != nil {
		fail(c, err, service.MsgUploadFailed)
		return
	}

	c.String(http.StatusOK, service.MsgFileUploaded)
}
