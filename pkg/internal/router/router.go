// Package router 管理路由配置，将 URL 与方法绑定到 handle 包中的处理器.
package router

import (
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/trackvault/pkg/cache"
	"github.com/yeisme/trackvault/pkg/configs"
)

// Register 注册全部路由.
// respCache 为 nil 时 GET 接口不缓存.
//
//	/api/projects, /api/projects/:id, /api/projects/:id/files
//	/api/dashboard
//	/api/health/*
//	/api/admin/*
//	/uploads/*name
//	/swagger/*any (调试模式)
func Register(e *gin.Engine, respCache *appcache.Cache) {
	cfg := configs.GetConfig()
	api := e.Group("/api")

	RegisterProjectRoutes(api, respCache, cfg.Cache.TTL)
	RegisterDashboardRoute(api, respCache, cfg.Cache.TTL)
	RegisterHealthCheckRoute(api)
	RegisterAdminRoutes(api.Group("/admin"), respCache)
	RegisterUploadRoutes(e, cfg.Upload.PublicPrefix)
	RegisterSwaggerRoute(e)
}
