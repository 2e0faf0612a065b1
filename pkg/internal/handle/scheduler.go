package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/jobs"
	"github.com/yeisme/trackvault/pkg/middleware"
)

// 管理接口的错误以 {"error": "..."} 返回.
func adminError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// SchedulerJobs 列出全部定时任务.
//
//	@Summary	定时任务列表
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	map[string][]scheduler.JobInfo
//	@Failure	503	{object}	map[string]string
//	@Router		/api/admin/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": middleware.GetScheduler(c).GetJobInfos()})
}

// SchedulerRunJob 立即执行一次任务，不影响原有调度.
//
//	@Summary	立即执行任务
//	@Tags		管理
//	@Produce	json
//	@Param		name	path		string	true	"任务名称"
//	@Success	202		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/admin/scheduler/jobs/{name}/run [post]
func SchedulerRunJob(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	name := c.Param("name")

	if _, err := sched.GetJobInfoByName(name); err != nil {
		adminError(c, http.StatusNotFound, err)
		return
	}

	if err := sched.RunNow(name); err != nil {
		adminError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "job triggered", "job": name})
}

// SchedulerStopJobs 停止全部任务的调度.
//
//	@Summary	停止全部任务
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/admin/scheduler/jobs/stop [post]
func SchedulerStopJobs(c *gin.Context) {
	if err := middleware.GetScheduler(c).StopJobs(); err != nil {
		adminError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "jobs stopped"})
}

// SchedulerRemoveJob 按任务 ID 或名称删除任务.
//
//	@Summary	删除任务
//	@Tags		管理
//	@Produce	json
//	@Param		name	path		string	true	"任务 ID 或名称"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	map[string]string
//	@Router		/api/admin/scheduler/jobs/{name} [delete]
func SchedulerRemoveJob(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	ref := c.Param("name")

	var err error
	if id, perr := uuid.Parse(ref); perr == nil {
		err = sched.RemoveJob(id)
	} else {
		err = sched.RemoveJobByName(ref)
	}

	if err != nil {
		adminError(c, http.StatusNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed", "job": ref})
}

// SchedulerQueueWaiting 排队等待执行的任务数.
//
//	@Summary	排队任务数
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	map[string]int
//	@Router		/api/admin/scheduler/queue/waiting [get]
func SchedulerQueueWaiting(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"waiting": middleware.GetScheduler(c).JobsWaitingInQueue()})
}

// RunCleanup 同步执行一次孤儿文件清理并返回报告，不依赖调度器.
//
//	@Summary		执行清理
//	@Description	删除未被任何文件记录引用的上传对象，以及所属项目已不存在的文件记录
//	@Tags			管理
//	@Produce		json
//	@Success		200	{object}	types.CleanupReport
//	@Failure		500	{object}	map[string]string
//	@Router			/api/admin/cleanup [post]
func RunCleanup(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := jobs.RunCleanup(ctx, configs.GetConfig().Cleanup)
	if err != nil {
		ctxPkg.Logger(ctx).Error().Err(err).Msg("cleanup failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})

		return
	}

	c.JSON(http.StatusOK, report)
}
