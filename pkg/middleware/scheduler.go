package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/trackvault/pkg/scheduler"
)

const schedulerCtxKey = "trackvault.scheduler"

// SchedulerMiddleware 让管理接口拿到应用的调度器，sched 为 nil 时不注入.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sched != nil {
			c.Set(schedulerCtxKey, sched)
		}

		c.Next()
	}
}

// GetScheduler 返回注入的调度器，未注入时为 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	v, ok := c.Get(schedulerCtxKey)
	if !ok {
		return nil
	}

	sched, _ := v.(*scheduler.Scheduler)

	return sched
}

// RequireScheduler 调度器未注入（scheduler.enabled=false）时以 503 结束请求.
func RequireScheduler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetScheduler(c) == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
			return
		}

		c.Next()
	}
}
