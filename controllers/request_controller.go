// controllers/request_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_inventory_tool/app"
	"Gin_postgres_redis_inventory_tool/db"
	"Gin_postgres_redis_inventory_tool/models"
	"Gin_postgres_redis_inventory_tool/policy"

	"github.com/gin-gonic/gin"
)

type RequestController struct{ *Srv }

func GetRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// POST /api/requests
func (rc *RequestController) CreateRequest(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var in struct {
		ItemID   string `json:"itemId" binding:"required"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
		Reason   string `json:"reason" binding:"required"`
		Priority string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Priority != "" && !models.ValidPriority(in.Priority) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid priority"})
		return
	}

	// 申请落在物品归属部门上
	it, err := rc.Repo.FindItemByID(c.Request.Context(), in.ItemID)
	if err != nil {
		fail(c, err)
		return
	}
	if err := policy.Allow(actor, policy.ActionCreateRequest, policy.Resource{Department: it.Department}); err != nil {
		fail(c, err)
		return
	}

	req, err := rc.Repo.CreateRequest(c.Request.Context(), db.CreateRequestInput{
		ItemID:   in.ItemID,
		UserID:   actor.ID,
		Quantity: in.Quantity,
		Reason:   in.Reason,
		Priority: in.Priority,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GET /api/requests?status=&department=&mine=&page=&size=
func (rc *RequestController) ListRequests(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	q := db.RequestsQuery{
		Status:     c.Query("status"),
		Department: policy.Scope(actor, c.Query("department")),
	}
	// staff 只能看自己的单；admin 可用 userId 过滤
	if actor.IsAdmin() {
		q.UserID = c.Query("userId")
	} else {
		q.UserID = actor.ID
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := rc.Repo.ListRequests(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/requests/:id
func (rc *RequestController) GetRequest(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	req, err := rc.Repo.FindRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := policy.Allow(actor, policy.ActionViewRequest, policy.Resource{Department: req.Department, OwnerID: req.UserID}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"request": req})
}

// POST /api/requests/:id/approve  扣库存发生在这一刻
func (rc *RequestController) Approve(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := policy.Allow(actor, policy.ActionDecideRequest, policy.Resource{}); err != nil {
		fail(c, err)
		return
	}

	var in struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&in)

	req, err := rc.Repo.ApproveRequest(c.Request.Context(), c.Param("id"), actor.ID, in.Note)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// POST /api/requests/:id/decline  不碰库存
func (rc *RequestController) Decline(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := policy.Allow(actor, policy.ActionDecideRequest, policy.Resource{}); err != nil {
		fail(c, err)
		return
	}

	var in struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&in)

	req, err := rc.Repo.DeclineRequest(c.Request.Context(), c.Param("id"), actor.ID, in.Note)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// POST /api/requests/:id/complete  申请人确认领用，顺手落一条用量
func (rc *RequestController) Complete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	req, err := rc.Repo.FindRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := policy.Allow(actor, policy.ActionCompleteRequest, policy.Resource{Department: req.Department, OwnerID: req.UserID}); err != nil {
		fail(c, err)
		return
	}

	out, err := rc.Repo.CompleteRequest(c.Request.Context(), req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/requests/stats
func (rc *RequestController) Stats(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	s, err := rc.Repo.GetRequestStats(c.Request.Context(), policy.Scope(actor, c.Query("department")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}
