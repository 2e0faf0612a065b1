package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/types"
)

const timeout = 2 * time.Second

type pingFunc func(ctx context.Context) error

// health 在超时时间内执行 ping 并写回组件状态.
func health(c *gin.Context, component string, ping pingFunc) {
	if ping == nil {
		c.JSON(http.StatusServiceUnavailable, types.HealthResponse{
			Component: component, Status: "unhealthy", Error: component + " client not initialized",
		})

		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := ping(ctx); err != nil {
		ctxPkg.Logger(ctx).Warn().Err(err).Str("component", component).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, types.HealthResponse{Component: component, Status: "unhealthy", Error: err.Error()})

		return
	}

	c.JSON(http.StatusOK, types.HealthResponse{Component: component, Status: "ok"})
}

// HealthDB 数据库健康检查.
//
//	@Summary	数据库健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Failure	503	{object}	types.HealthResponse
//	@Router		/api/health/db [get]
func HealthDB(c *gin.Context) {
	var ping pingFunc
	if dbc := ctxPkg.GetDBClient(c.Request.Context()); dbc != nil {
		ping = dbc.Ping
	}

	health(c, "db", ping)
}

// HealthUpload 上传存储健康检查.
//
//	@Summary	上传存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Failure	503	{object}	types.HealthResponse
//	@Router		/api/health/upload [get]
func HealthUpload(c *gin.Context) {
	var ping pingFunc
	if sink := ctxPkg.GetUploadSink(c.Request.Context()); sink != nil {
		ping = sink.Ping
	}

	health(c, "upload", ping)
}

// HealthKV 键值存储健康检查.
//
//	@Summary	KV 健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Failure	503	{object}	types.HealthResponse
//	@Router		/api/health/kv [get]
func HealthKV(c *gin.Context) {
	var ping pingFunc
	if kvc := ctxPkg.GetKVClient(c.Request.Context()); kvc != nil {
		ping = kvc.Ping
	}

	health(c, "kv", ping)
}

// HealthMQ 消息队列健康检查.
//
//	@Summary	消息队列健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Failure	503	{object}	types.HealthResponse
//	@Router		/api/health/mq [get]
func HealthMQ(c *gin.Context) {
	var ping pingFunc
	if mqc := ctxPkg.GetMQClient(c.Request.Context()); mqc != nil {
		ping = mqc.Ping
	}

	health(c, "mq", ping)
}
