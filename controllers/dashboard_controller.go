// controllers/dashboard_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_booking_system/app"

	"github.com/gin-gonic/gin"
)

type DashboardController struct{ *Srv }

func NewDashboardController(s *Srv) *DashboardController { return &DashboardController{Srv: s} }

// GET /api/dashboard?recent=5
func (dc *DashboardController) Dashboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("recent", "5"))
	data, err := dc.Repo.Dashboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// GET /api/reports/usage — 导出渲染由前端负责，这里只出 JSON
func (dc *DashboardController) UsageReport(c *gin.Context) {
	rows, err := dc.Repo.UsageReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"report": rows})
}
