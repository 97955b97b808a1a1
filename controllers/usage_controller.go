// controllers/usage_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_inventory_tool/app"
	"Gin_postgres_redis_inventory_tool/db"
	"Gin_postgres_redis_inventory_tool/policy"

	"github.com/gin-gonic/gin"
)

type UsageController struct{ *Srv }

func GetUsageController(s *Srv) *UsageController { return &UsageController{Srv: s} }

// POST /api/usage  手工补记一条消耗（不扣库存，只进台账）
func (uc *UsageController) RecordUsage(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var in struct {
		ItemID       string     `json:"itemId" binding:"required"`
		QuantityUsed int        `json:"quantityUsed" binding:"required,min=1"`
		Purpose      string     `json:"purpose"`
		UsedAt       *time.Time `json:"usedAt"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.UsedAt != nil && in.UsedAt.After(time.Now()) {
		c.JSON(http.StatusBadRequest, app.H{"error": "usedAt cannot be in the future"})
		return
	}

	it, err := uc.Repo.FindItemByID(c.Request.Context(), in.ItemID)
	if err != nil {
		fail(c, err)
		return
	}
	if err := policy.Allow(actor, policy.ActionRecordUsage, policy.Resource{Department: it.Department}); err != nil {
		fail(c, err)
		return
	}

	entry, err := uc.Repo.RecordUsage(c.Request.Context(), db.RecordUsageInput{
		ItemID:       in.ItemID,
		UserID:       actor.ID,
		Department:   it.Department,
		QuantityUsed: in.QuantityUsed,
		Purpose:      in.Purpose,
		UsedAt:       in.UsedAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GET /api/usage?itemId=&department=&sinceDays=&page=&size=
func (uc *UsageController) ListUsage(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	q := db.UsageQuery{
		ItemID:     c.Query("itemId"),
		Department: policy.Scope(actor, c.Query("department")),
	}
	if days, _ := strconv.Atoi(c.Query("sinceDays")); days > 0 {
		since := time.Now().AddDate(0, 0, -days)
		q.Since = &since
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsage(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
