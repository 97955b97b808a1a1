// controllers/forecast_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_inventory_tool/app"
	"Gin_postgres_redis_inventory_tool/forecast"
	"Gin_postgres_redis_inventory_tool/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ForecastController struct{ *Srv }

func GetForecastController(s *Srv) *ForecastController { return &ForecastController{Srv: s} }

// GET /api/forecast?months=6&department=lab
func (fc *ForecastController) GetForecast(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
	if months <= 0 || months > 24 {
		months = forecast.DefaultWindowMonths
	}
	department := policy.Scope(actor, c.Query("department"))

	ctx := c.Request.Context()

	// 预测是咨询性的，短缓存就够
	if cached, err := fc.Cache.Get(ctx, department, months); err == nil && cached != nil {
		c.JSON(http.StatusOK, app.H{"forecast": cached.Forecast, "summary": cached.Summary, "cached": true})
		return
	}

	items, err := fc.Repo.ListActiveItems(ctx, department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	usage, err := fc.Repo.MonthlyTotals(ctx, forecast.WindowStart(time.Now(), months), department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	res := forecast.Build(items, usage)
	if err := fc.Cache.Set(ctx, department, months, &res); err != nil {
		fc.Log.Warn("forecast cache write failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, app.H{"forecast": res.Forecast, "summary": res.Summary, "cached": false})
}

// GET /api/forecast/top-used?months=6&limit=10
func (fc *ForecastController) TopUsed(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	department := policy.Scope(actor, c.Query("department"))

	rows, err := fc.Repo.TopUsedItems(c.Request.Context(), forecast.WindowStart(time.Now(), months), department, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// GET /api/forecast/departments?months=6
func (fc *ForecastController) DepartmentUsage(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
	department := policy.Scope(actor, c.Query("department"))

	rows, err := fc.Repo.GetDepartmentUsage(c.Request.Context(), forecast.WindowStart(time.Now(), months), department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"departments": rows})
}
