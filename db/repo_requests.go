// db/repo_requests.go
package db

import (
	"Gin_postgres_redis_inventory_tool/models"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 从当前状态不允许的迁移；重试一个已经定过的申请也会落到这里
var ErrInvalidStateTransition = errors.New("invalid state transition")

// 建单时的提示性校验没过：要的比现在有的多。
// 请求本身有问题（拿 400），区别于审批时刻的竞争失败（ErrInsufficientStock，409）。
var ErrQuantityExceedsStock = errors.New("insufficient stock available")

type CreateRequestInput struct {
	ItemID   string
	UserID   string
	Quantity int
	Reason   string
	Priority string
	// Department 取 item 的部门，不由调用方传入
}

// CreateRequest 建单即 pending。创建时的库存检查只是提示性的，
// 真正的扣减发生在审批时刻（那之间库存可能已经变了）。
func (r *Repo) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.Request, error) {
	it, err := r.FindItemByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if it.Quantity < in.Quantity {
		return nil, ErrQuantityExceedsStock
	}

	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	req := &models.Request{
		ID:          uuid.NewString(),
		ItemID:      it.ID,
		UserID:      in.UserID,
		Department:  it.Department, // 建单时固定为物品部门
		Quantity:    in.Quantity,
		Status:      models.StatusPending,
		Reason:      in.Reason,
		Priority:    in.Priority,
		RequestedAt: time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (r *Repo) FindRequestByID(ctx context.Context, id string) (*models.Request, error) {
	var req models.Request
	if err := r.DB.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

type RequestsQuery struct {
	Status     string
	Department string
	UserID     string
	Page       int
	Size       int
}

type PagedRequests struct {
	Total    int64            `json:"total"`
	Requests []models.Request `json:"requests"`
}

func (r *Repo) ListRequests(ctx context.Context, q RequestsQuery) (*PagedRequests, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Request{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Department != "" {
		tx = tx.Where("department = ?", q.Department)
	}
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var reqs []models.Request
	if err := tx.
		Order("requested_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	return &PagedRequests{Total: total, Requests: reqs}, nil
}

// 审批通过：原子操作 = 锁住申请 → 条件扣库存 → 条件翻状态。
// 任一步失败整个事务回滚，申请保持 pending。
// 库存不够时调用方拿到 ErrInsufficientStock；状态已经被别人改了拿到 ErrInvalidStateTransition。
func (r *Repo) ApproveRequest(ctx context.Context, requestID, approverID, note string) (*models.Request, error) {
	var out models.Request
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住申请行，同一单的并发审批在这里串行化
		var req models.Request
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !models.CanTransition(req.Status, models.StatusApproved) {
			return ErrInvalidStateTransition
		}

		// 2) 条件扣减：审批时刻重新校验库存，不信任建单时的快照
		if err := adjustQuantity(tx, req.ItemID, -req.Quantity); err != nil {
			return err
		}

		// 3) 条件翻状态（update ... where status='pending'，防止重复生效）
		now := time.Now().UTC()
		res := tx.Model(&models.Request{}).
			Where("id = ? AND status = ?", req.ID, models.StatusPending).
			Updates(map[string]any{
				"status":     models.StatusApproved,
				"admin_note": note,
				"decided_at": now,
				"decided_by": approverID,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidStateTransition
		}

		return tx.First(&out, "id = ?", req.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// 驳回：终态，不碰库存
func (r *Repo) DeclineRequest(ctx context.Context, requestID, approverID, note string) (*models.Request, error) {
	now := time.Now().UTC()
	res := r.DB.WithContext(ctx).Model(&models.Request{}).
		Where("id = ? AND status = ?", requestID, models.StatusPending).
		Updates(map[string]any{
			"status":     models.StatusDeclined,
			"admin_note": note,
			"decided_at": now,
			"decided_by": approverID,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// 区分：单子不存在 vs 状态不对
		if _, err := r.FindRequestByID(ctx, requestID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidStateTransition
	}
	return r.FindRequestByID(ctx, requestID)
}

// 确认领用：approved -> completed，库存在审批时已经扣过，这里不再动。
// 同一事务顺手补一条 UsageLog（带回 requestId），预测的数据源才跟实际领用对得上。
func (r *Repo) CompleteRequest(ctx context.Context, requestID string) (*models.Request, error) {
	var out models.Request
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.Request
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !models.CanTransition(req.Status, models.StatusCompleted) {
			return ErrInvalidStateTransition
		}

		now := time.Now().UTC()
		res := tx.Model(&models.Request{}).
			Where("id = ? AND status = ?", req.ID, models.StatusApproved).
			Updates(map[string]any{
				"status":     models.StatusCompleted,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidStateTransition
		}

		usage := &models.UsageLog{
			ID:           uuid.NewString(),
			ItemID:       req.ItemID,
			UserID:       req.UserID,
			Department:   req.Department,
			QuantityUsed: req.Quantity,
			UsedAt:       now,
			Purpose:      req.Reason,
			RequestID:    &req.ID,
		}
		if err := tx.Create(usage).Error; err != nil {
			return err
		}

		return tx.First(&out, "id = ?", req.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type RequestStats struct {
	TotalRequests    int64        `json:"totalRequests"`
	PendingRequests  int64        `json:"pendingRequests"`
	ApprovedRequests int64        `json:"approvedRequests"`
	DeclinedRequests int64        `json:"declinedRequests"`
	DepartmentStats  []GroupCount `json:"departmentStats"`
	StatusStats      []GroupCount `json:"statusStats"`
}

func (r *Repo) GetRequestStats(ctx context.Context, department string) (*RequestStats, error) {
	base := func() *gorm.DB {
		tx := r.DB.WithContext(ctx).Model(&models.Request{})
		if department != "" {
			tx = tx.Where("department = ?", department)
		}
		return tx
	}

	var s RequestStats
	if err := base().Count(&s.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.StatusPending).Count(&s.PendingRequests).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.StatusApproved).Count(&s.ApprovedRequests).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.StatusDeclined).Count(&s.DeclinedRequests).Error; err != nil {
		return nil, err
	}
	if err := base().Select("department AS key, COUNT(*) AS count").
		Group("department").Scan(&s.DepartmentStats).Error; err != nil {
		return nil, err
	}
	if err := base().Select("status AS key, COUNT(*) AS count").
		Group("status").Scan(&s.StatusStats).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
