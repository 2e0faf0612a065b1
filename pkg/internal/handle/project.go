package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/service"
	"github.com/yeisme/trackvault/pkg/internal/types"
)

// ListProjects 返回全部项目及其文件.
//
//	@Summary		项目列表
//	@Description	返回全部项目，File_path 改写为绝对 URL，顶层文件字段取第一个文件，没有文件时为 null
//	@Tags			项目
//	@Produce		json
//	@Success		200	{array}		types.ProjectItem
//	@Failure		500	{string}	string	"Database error occurred."
//	@Router			/api/projects [get]
func ListProjects(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := service.NewProjectService(ctx).List(ctx, baseURL(c))
	if err != nil {
		fail(c, err, service.MsgDatabaseError)
		return
	}

	c.JSON(http.StatusOK, items)
}

// CreateProject 创建项目，支持 JSON 或 multipart 表单，multipart 时可附带一个文件.
//
//	@Summary		创建项目
//	@Tags			项目
//	@Accept			json,mpfd
//	@Produce		json
//	@Param			Project_name	formData	string	true	"项目名称"
//	@Param			Project_desc	formData	string	true	"项目描述"
//	@Param			User_ID			formData	int		true	"用户 ID"
//	@Param			file			formData	file	false	"附带的文件"
//	@Success		201				{object}	types.CreateProjectResponse
//	@Failure		400				{string}	string	"Missing required fields."
//	@Failure		413				{string}	string	"File too large."
//	@Failure		500				{string}	string	"Error creating project."
//	@Router			/api/projects [post]
func CreateProject(c *gin.Context) {
	ctx := c.Request.Context()

	limitBody(c)

	var req types.CreateProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		if tooLarge(c, err) {
			return
		}

		ctxPkg.Logger(ctx).Warn().Err(err).Msg("invalid create project request")
		c.String(http.StatusBadRequest, service.MsgMissingFields)

		return
	}

	var (
		up      *service.Upload
		closeUp = func() {}
	)

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		var err error
		if up, closeUp, err = formUpload(c); err != nil {
			if tooLarge(c, err) {
				return
			}

			fail(c, err, service.MsgUploadFailed)

			return
		}
	}
	defer closeUp()

	resp, err := service.NewProjectService(ctx).Create(ctx, req, up)
	if err != nil {
		fail(c, err, service.MsgCreateFailed)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RenameProject 修改项目名称.
//
//	@Summary		重命名项目
//	@Description	只更新项目名称，项目不存在时不做任何修改
//	@Tags			项目
//	@Accept			json
//	@Produce		plain
//	@Param			id		path		int							true	"项目 ID"
//	@Param			body	body		types.RenameProjectRequest	true	"新名称"
//	@Success		200		{string}	string						"Project renamed successfully."
//	@Failure		400		{string}	string						"Project name cannot be empty."
//	@Failure		500		{string}	string						"Error renaming project."
//	@Router			/api/projects/{id} [put]
func RenameProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	// 请求体为空或格式错误时按空名称处理
	var req types.RenameProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		ctxPkg.Logger(ctx).Debug().Err(err).Msg("bind rename request")
	}

	if err := service.NewProjectService(ctx).Rename(ctx, id, req); err != nil {
		fail(c, err, service.MsgRenameFailed)
		return
	}

	c.String(http.StatusOK, service.MsgRenamed)
}

// DeleteProject 删除项目及其全部文件.
//
//	@Summary	删除项目
//	@Tags		项目
//	@Produce	json
//	@Param		id	path		int	true	"项目 ID"
//	@Success	200	{object}	types.MessageResponse
//	@Failure	400	{string}	string	"Invalid project id."
//	@Failure	500	{string}	string	"Error deleting project."
//	@Router		/api/projects/{id} [delete]
func DeleteProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if err := service.NewProjectService(ctx).Delete(ctx, id); err != nil {
		fail(c, err, service.MsgDeleteProjectFailed)
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: service.MsgProjectDeleted})
}
