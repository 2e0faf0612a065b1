package middleware

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/storage"
)

// StorageMiddleware 将应用持有的 storage.Manager 注入到每个请求的 context 中，
// 服务层通过 pkg/context 的辅助函数取用数据库、上传存储、KV 与 MQ.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxPkg.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
