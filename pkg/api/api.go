// Package api 组装对外的 HTTP 接口.
package api

import (
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/trackvault/pkg/cache"
	"github.com/yeisme/trackvault/pkg/internal/router"
)

// RegisterGroup 注册全部 HTTP 路由到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine, respCache *appcache.Cache) *gin.Engine {
	router.Register(e, respCache)

	return e
}
