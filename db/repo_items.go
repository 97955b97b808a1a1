// db/repo_items.go
package db

import (
	"Gin_postgres_redis_inventory_tool/models"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AdjustQuantity 的失败语义：扣到负数 → ErrInsufficientStock
var ErrInsufficientStock = errors.New("insufficient stock")

// Items

func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	return r.DB.WithContext(ctx).Create(it).Error
}

// FindItemByID 只返回在用的物品；软删除过的等同于不存在
func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ? AND is_active = TRUE", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

type ItemsQuery struct {
	Q           string // 模糊搜索：name
	Category    string
	Department  string // 空串 = 不过滤（admin）
	StockStatus string // "", "out_of_stock", "low_stock", "in_stock"
	Page        int
	Size        int
}

type PagedItems struct {
	Total int64         `json:"total"`
	Items []models.Item `json:"items"`
}

func (r *Repo) ListItems(ctx context.Context, q ItemsQuery) (*PagedItems, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Item{}).Where("is_active = TRUE")
	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Department != "" {
		tx = tx.Where("department = ?", q.Department)
	}
	switch q.StockStatus {
	case "out_of_stock":
		tx = tx.Where("quantity = 0")
	case "low_stock":
		tx = tx.Where("quantity > 0 AND quantity <= min_stock_level")
	case "in_stock":
		tx = tx.Where("quantity > min_stock_level")
	default:
		// all
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Item
	if err := tx.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return &PagedItems{Total: total, Items: items}, nil
}

// ListActiveItems 给预测用：不分页，可按部门收敛
func (r *Repo) ListActiveItems(ctx context.Context, department string) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).Where("is_active = TRUE")
	if department != "" {
		tx = tx.Where("department = ?", department)
	}
	var items []models.Item
	err := tx.Order("created_at ASC").Find(&items).Error
	return items, err
}

// UpdateItem 改描述性字段；quantity 不在这里改，只能走 AdjustQuantity
func (r *Repo) UpdateItem(ctx context.Context, id string, updates map[string]any) (*models.Item, error) {
	delete(updates, "quantity")
	delete(updates, "id")
	updates["updated_at"] = time.Now().UTC()

	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND is_active = TRUE", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindItemByID(ctx, id)
}

// SoftDeleteItem 清 is_active；有历史申请/用量引用，绝不物理删除
func (r *Repo) SoftDeleteItem(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND is_active = TRUE", id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// adjustQuantity 唯一合法的库存写入口：检查和写入是同一条条件 UPDATE，
// 不会出现"先读旧值再写"的窗口，并发审批只会有一个赢家。
// 事务里复用时传 tx 进来即可。
func adjustQuantity(db *gorm.DB, itemID string, delta int) error {
	res := db.Model(&models.Item{}).
		Where("id = ? AND is_active = TRUE AND quantity + ? >= 0", itemID, delta).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 没改着行：要么物品没了，要么库存不够，查一下区分
		var it models.Item
		err := db.First(&it, "id = ? AND is_active = TRUE", itemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

// AdjustQuantity 应用 quantity += delta，结果不得为负。
func (r *Repo) AdjustQuantity(ctx context.Context, itemID string, delta int) (*models.Item, error) {
	if err := adjustQuantity(r.DB.WithContext(ctx), itemID, delta); err != nil {
		return nil, err
	}
	return r.FindItemByID(ctx, itemID)
}

// AdjustQuantityAudited 管理员直调库存：调整 + 审计记录同一事务
func (r *Repo) AdjustQuantityAudited(ctx context.Context, itemID string, delta int, actorID, actorUsername string, reason *string) (*models.Item, error) {
	var it models.Item
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := adjustQuantity(tx, itemID, delta); err != nil {
			return err
		}
		if err := tx.First(&it, "id = ?", itemID).Error; err != nil {
			return err
		}
		entry := &models.AdjustmentLog{
			ItemID:        itemID,
			ActorID:       actorID,
			ActorUsername: actorUsername,
			Delta:         delta,
			NewQuantity:   it.Quantity,
			Reason:        reason,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// LowStockItems 预警列表：库存 <= 最低水位
func (r *Repo) LowStockItems(ctx context.Context, department string) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).
		Where("is_active = TRUE AND quantity <= min_stock_level")
	if department != "" {
		tx = tx.Where("department = ?", department)
	}
	var items []models.Item
	err := tx.Order("quantity ASC").Find(&items).Error
	return items, err
}

type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type ItemStats struct {
	TotalItems      int64        `json:"totalItems"`
	OutOfStock      int64        `json:"outOfStock"`
	LowStock        int64        `json:"lowStock"`
	CategoryStats   []GroupCount `json:"categoryStats"`
	DepartmentStats []GroupCount `json:"departmentStats"`
}

func (r *Repo) GetItemStats(ctx context.Context, department string) (*ItemStats, error) {
	base := func() *gorm.DB {
		tx := r.DB.WithContext(ctx).Model(&models.Item{}).Where("is_active = TRUE")
		if department != "" {
			tx = tx.Where("department = ?", department)
		}
		return tx
	}

	var s ItemStats
	if err := base().Count(&s.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := base().Where("quantity = 0").Count(&s.OutOfStock).Error; err != nil {
		return nil, err
	}
	if err := base().Where("quantity <= min_stock_level").Count(&s.LowStock).Error; err != nil {
		return nil, err
	}
	if err := base().Select("category AS key, COUNT(*) AS count").
		Group("category").Scan(&s.CategoryStats).Error; err != nil {
		return nil, err
	}
	if err := base().Select("department AS key, COUNT(*) AS count").
		Group("department").Scan(&s.DepartmentStats).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
