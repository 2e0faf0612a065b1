package router

import (
	"time"

	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/trackvault/pkg/cache"
	"github.com/yeisme/trackvault/pkg/internal/handle"
	"github.com/yeisme/trackvault/pkg/middleware"
)

// RegisterProjectRoutes 注册项目与文件相关路由，写操作成功后清空响应缓存.
func RegisterProjectRoutes(g *gin.RouterGroup, respCache *appcache.Cache, ttl time.Duration) {
	projects := g.Group("/projects")
	{
		projects.GET("", middleware.ResponseCache(respCache, ttl), handle.ListProjects)

		writes := projects.Group("", middleware.InvalidateCache(respCache))
		{
			writes.POST("", handle.CreateProject)
			writes.PUT("/:id", handle.RenameProject)
			writes.DELETE("/:id", handle.DeleteProject)
			writes.POST("/:id/files", handle.AttachFile)
		}
	}
}

// RegisterDashboardRoute 注册仪表盘统计路由.
func RegisterDashboardRoute(g *gin.RouterGroup, respCache *appcache.Cache, ttl time.Duration) {
	g.GET("/dashboard", middleware.ResponseCache(respCache, ttl), handle.GetDashboard)
}

// RegisterUploadRoutes 在 prefix 下提供上传文件的下载.
func RegisterUploadRoutes(e *gin.Engine, prefix string) {
	e.GET(prefix+"/*name", handle.ServeUpload)
	e.HEAD(prefix+"/*name", handle.ServeUpload)
}
