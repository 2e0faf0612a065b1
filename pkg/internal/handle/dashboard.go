package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/trackvault/pkg/internal/service"
)

// GetDashboard 返回项目数、歌词文件数与音频文件数.
//
//	@Summary	仪表盘统计
//	@Tags		仪表盘
//	@Produce	json
//	@Success	200	{object}	types.DashboardStats
//	@Failure	500	{string}	string	"Error fetching dashboard data."
//	@Router		/api/dashboard [get]
func GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := service.NewDashboardService(ctx).Stats(ctx)
	if err != nil {
		fail(c, err, service.MsgDashboardFailed)
		return
	}

	c.JSON(http.StatusOK, stats)
}
