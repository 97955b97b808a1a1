// controllers/report_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_inventory_tool/app"
	"Gin_postgres_redis_inventory_tool/forecast"
	"Gin_postgres_redis_inventory_tool/policy"

	"github.com/gin-gonic/gin"
)

type ReportController struct{ *Srv }

func GetReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// GET /api/reports/monthly?year=2026
func (rc *ReportController) MonthlyUsage(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
	if year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid year"})
		return
	}
	department := policy.Scope(actor, c.Query("department"))

	rows, err := rc.Repo.GetMonthlyUsage(c.Request.Context(), year, department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"year": year, "months": rows})
}

// GET /api/reports/categories?months=6  类目消耗分布（含百分比）
func (rc *ReportController) CategoryDistribution(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
	department := policy.Scope(actor, c.Query("department"))

	rows, err := rc.Repo.GetCategoryUsage(c.Request.Context(), forecast.WindowStart(time.Now(), months), department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"categories": rows})
}

// GET /api/reports/dashboard  物品统计 + 申请统计 + 低库存 + 近期消耗一把抓
func (rc *ReportController) Dashboard(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	department := policy.Scope(actor, c.Query("department"))
	ctx := c.Request.Context()

	items, err := rc.Repo.GetItemStats(ctx, department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	requests, err := rc.Repo.GetRequestStats(ctx, department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	lowStock, err := rc.Repo.LowStockItems(ctx, department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	now := time.Now()
	lastMonth, err := rc.Repo.GetUsageTotals(ctx, forecast.WindowStart(now, 1), department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	last3Months, err := rc.Repo.GetUsageTotals(ctx, forecast.WindowStart(now, 3), department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	// 近半年消耗最多的部门/类目，各取前五
	topDepartments, err := rc.Repo.GetDepartmentUsage(ctx, forecast.WindowStart(now, 6), department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if len(topDepartments) > 5 {
		topDepartments = topDepartments[:5]
	}
	topCategories, err := rc.Repo.GetCategoryUsage(ctx, forecast.WindowStart(now, 6), department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if len(topCategories) > 5 {
		topCategories = topCategories[:5]
	}

	c.JSON(http.StatusOK, app.H{
		"items":    items,
		"requests": requests,
		"lowStock": app.H{"items": lowStock, "count": len(lowStock)},
		"usage": app.H{
			"lastMonth":   lastMonth,
			"last3Months": last3Months,
		},
		"topDepartments": topDepartments,
		"topCategories":  topCategories,
	})
}
