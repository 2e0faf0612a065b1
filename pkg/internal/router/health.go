package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/trackvault/pkg/internal/handle"
)

// RegisterHealthCheckRoute 为每个存储协作方注册 /health/<name>.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	health := g.Group("/health")

	for name, h := range map[string]gin.HandlerFunc{
		"db":     handle.HealthDB,
		"upload": handle.HealthUpload,
		"kv":     handle.HealthKV,
		"mq":     handle.HealthMQ,
	} {
		health.GET("/"+name, h)
	}
}
