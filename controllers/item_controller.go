// controllers/item_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_inventory_tool/app"
	"Gin_postgres_redis_inventory_tool/db"
	"Gin_postgres_redis_inventory_tool/models"
	"Gin_postgres_redis_inventory_tool/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemController struct{ *Srv }

func GetItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

// POST /api/items
func (ic *ItemController) CreateItem(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var in struct {
		Name          string `json:"name" binding:"required"`
		Category      string `json:"category" binding:"required"`
		Department    string `json:"department" binding:"required"`
		Quantity      int    `json:"quantity"`
		MinStockLevel *int   `json:"minStockLevel"`
		MaxStockLevel *int   `json:"maxStockLevel"`
		Unit          string `json:"unit"`
		Description   string `json:"description"`
		Location      string `json:"location"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !models.ValidCategory(in.Category) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid category"})
		return
	}
	if !models.ValidDepartment(in.Department) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid department"})
		return
	}
	if in.Quantity < 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "quantity must be >= 0"})
		return
	}
	if err := policy.Allow(actor, policy.ActionCreateItem, policy.Resource{Department: in.Department}); err != nil {
		fail(c, err)
		return
	}

	it := &models.Item{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Category:      in.Category,
		Department:    in.Department,
		Quantity:      in.Quantity,
		MinStockLevel: 5,
		MaxStockLevel: in.MaxStockLevel,
		Unit:          "pieces",
		Description:   in.Description,
		Location:      in.Location,
		IsActive:      true,
	}
	if in.MinStockLevel != nil && *in.MinStockLevel >= 0 {
		it.MinStockLevel = *in.MinStockLevel
	}
	if in.Unit != "" {
		it.Unit = in.Unit
	}
	if err := ic.Repo.CreateItem(c.Request.Context(), it); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, it)
}

// GET /api/items?q=&category=&department=&stockStatus=&page=&size=
func (ic *ItemController) ListItems(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	q := db.ItemsQuery{
		Q:           c.Query("q"),
		Category:    c.Query("category"),
		Department:  policy.Scope(actor, c.Query("department")),
		StockStatus: c.Query("stockStatus"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := ic.Repo.ListItems(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/items/:id
func (ic *ItemController) GetItem(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := policy.Allow(actor, policy.ActionViewItem, policy.Resource{Department: it.Department}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"item": it, "stockStatus": it.StockStatus()})
}

// PUT /api/items/:id  只改描述性字段；库存走 AdjustStock
func (ic *ItemController) UpdateItem(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := policy.Allow(actor, policy.ActionUpdateItem, policy.Resource{Department: it.Department}); err != nil {
		fail(c, err)
		return
	}

	var in struct {
		Name          *string `json:"name"`
		Category      *string `json:"category"`
		MinStockLevel *int    `json:"minStockLevel"`
		MaxStockLevel *int    `json:"maxStockLevel"`
		Unit          *string `json:"unit"`
		Description   *string `json:"description"`
		Location      *string `json:"location"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Category != nil {
		if !models.ValidCategory(*in.Category) {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid category"})
			return
		}
		updates["category"] = *in.Category
	}
	if in.MinStockLevel != nil {
		if *in.MinStockLevel < 0 {
			c.JSON(http.StatusBadRequest, app.H{"error": "minStockLevel must be >= 0"})
			return
		}
		updates["min_stock_level"] = *in.MinStockLevel
	}
	if in.MaxStockLevel != nil {
		updates["max_stock_level"] = *in.MaxStockLevel
	}
	if in.Unit != nil {
		updates["unit"] = *in.Unit
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "no fields to update"})
		return
	}

	out, err := ic.Repo.UpdateItem(c.Request.Context(), it.ID, updates)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /api/items/:id  软删除
func (ic *ItemController) DeleteItem(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := policy.Allow(actor, policy.ActionDeleteItem, policy.Resource{}); err != nil {
		fail(c, err)
		return
	}
	if err := ic.Repo.SoftDeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/items/:id/adjust  管理员直调库存，带审计记录
func (ic *ItemController) AdjustStock(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := policy.Allow(actor, policy.ActionAdjustStock, policy.Resource{}); err != nil {
		fail(c, err)
		return
	}

	var in struct {
		Delta  int     `json:"delta" binding:"required"`
		Reason *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	it, err := ic.Repo.AdjustQuantityAudited(c.Request.Context(), c.Param("id"), in.Delta, actor.ID, actor.Username, in.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"item": it, "stockStatus": it.StockStatus()})
}

// GET /api/items/low-stock
func (ic *ItemController) LowStock(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	items, err := ic.Repo.LowStockItems(c.Request.Context(), policy.Scope(actor, c.Query("department")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items, "count": len(items)})
}

// GET /api/items/stats
func (ic *ItemController) Stats(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	s, err := ic.Repo.GetItemStats(c.Request.Context(), policy.Scope(actor, c.Query("department")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}
