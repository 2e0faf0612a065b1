package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware CORS中间件，允许任意来源访问 API 与上传文件.
func CORSMiddleware() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", RequestIDHeader, "X-Cache-Bypass")
	config.ExposeHeaders = []string{RequestIDHeader, "X-Cache", "ETag"}

	return cors.New(config)
}
