package router

import (
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/trackvault/pkg/cache"
	"github.com/yeisme/trackvault/pkg/internal/handle"
	"github.com/yeisme/trackvault/pkg/middleware"
)

// RegisterAdminRoutes 注册调度器管理与手动清理接口.
func RegisterAdminRoutes(g *gin.RouterGroup, respCache *appcache.Cache) {
	sched := g.Group("/scheduler", middleware.RequireScheduler())
	{
		sched.GET("/jobs", handle.SchedulerJobs)
		sched.POST("/jobs/stop", handle.SchedulerStopJobs)
		sched.POST("/jobs/:name/run", handle.SchedulerRunJob)
		sched.DELETE("/jobs/:name", handle.SchedulerRemoveJob)
		sched.GET("/queue/waiting", handle.SchedulerQueueWaiting)
	}

	// 清理会删除悬空的文件记录，列表缓存随之失效
	g.POST("/cleanup", middleware.InvalidateCache(respCache), handle.RunCleanup)
}
