// db/repo_usage.go
package db

import (
	"Gin_postgres_redis_inventory_tool/forecast"
	"Gin_postgres_redis_inventory_tool/models"
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// Usage ledger：只追加

type RecordUsageInput struct {
	ItemID       string
	UserID       string
	Department   string
	QuantityUsed int
	Purpose      string
	UsedAt       *time.Time // 为空取当前时间
}

func (r *Repo) RecordUsage(ctx context.Context, in RecordUsageInput) (*models.UsageLog, error) {
	// 手工补记也要求物品真实存在
	if _, err := r.FindItemByID(ctx, in.ItemID); err != nil {
		return nil, err
	}

	usedAt := time.Now().UTC()
	if in.UsedAt != nil {
		usedAt = in.UsedAt.UTC()
	}
	entry := &models.UsageLog{
		ID:           uuid.NewString(),
		ItemID:       in.ItemID,
		UserID:       in.UserID,
		Department:   in.Department,
		QuantityUsed: in.QuantityUsed,
		UsedAt:       usedAt,
		Purpose:      in.Purpose,
	}
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

type UsageQuery struct {
	ItemID     string
	Department string
	Since      *time.Time
	Page       int
	Size       int
}

type PagedUsage struct {
	Total   int64             `json:"total"`
	Entries []models.UsageLog `json:"entries"`
}

func (r *Repo) ListUsage(ctx context.Context, q UsageQuery) (*PagedUsage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.UsageLog{})
	if q.ItemID != "" {
		tx = tx.Where("item_id = ?", q.ItemID)
	}
	if q.Department != "" {
		tx = tx.Where("department = ?", q.Department)
	}
	if q.Since != nil {
		tx = tx.Where("used_at >= ?", q.Since)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []models.UsageLog
	if err := tx.
		Order("used_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return &PagedUsage{Total: total, Entries: entries}, nil
}

type monthlyRow struct {
	ItemID    string
	Year      int
	Month     int
	TotalUsed int
}

// MonthlyTotals 预测引擎的数据源：窗口内按 item + 年月聚合的用量，
// 每个 item 的月份从旧到新。
func (r *Repo) MonthlyTotals(ctx context.Context, since time.Time, department string) (map[string][]forecast.MonthlyUsage, error) {
	tx := r.DB.WithContext(ctx).
		Table(models.UsageLogTable).
		Select(`item_id,
			EXTRACT(YEAR FROM used_at)::int AS year,
			EXTRACT(MONTH FROM used_at)::int AS month,
			SUM(quantity_used)::int AS total_used`).
		Where("used_at >= ?", since)
	if department != "" {
		tx = tx.Where("department = ?", department)
	}

	var rows []monthlyRow
	if err := tx.
		Group("item_id, year, month").
		Order("item_id, year, month").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string][]forecast.MonthlyUsage, len(rows))
	for _, row := range rows {
		out[row.ItemID] = append(out[row.ItemID], forecast.MonthlyUsage{
			Year:      row.Year,
			Month:     row.Month,
			TotalUsed: row.TotalUsed,
		})
	}
	return out, nil
}

type TopUsedItem struct {
	ItemID       string  `json:"itemId"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Department   string  `json:"department"`
	CurrentStock int     `json:"currentStock"`
	TotalUsed    int     `json:"totalUsed"`
	UsageCount   int     `json:"usageCount"`
	AveragePerUse float64 `json:"averagePerUse"`
}

func (r *Repo) TopUsedItems(ctx context.Context, since time.Time, department string, limit int) ([]TopUsedItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	tx := r.DB.WithContext(ctx).
		Table(models.UsageLogTable+" u").
		Select(`u.item_id,
			i.name, i.category, i.department,
			i.quantity AS current_stock,
			SUM(u.quantity_used)::int AS total_used,
			COUNT(*)::int AS usage_count,
			ROUND(SUM(u.quantity_used)::numeric / COUNT(*), 2)::float8 AS average_per_use`).
		Joins("JOIN "+models.ItemTable+" i ON i.id = u.item_id").
		Where("u.used_at >= ?", since)
	if department != "" {
		tx = tx.Where("u.department = ?", department)
	}

	var rows []TopUsedItem
	err := tx.
		Group("u.item_id, i.name, i.category, i.department, i.quantity").
		Order("total_used DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

type DepartmentUsage struct {
	Department      string  `json:"department"`
	TotalUsed       int     `json:"totalUsed"`
	UsageCount      int     `json:"usageCount"`
	UniqueItemCount int     `json:"uniqueItemCount"`
	AveragePerUse   float64 `json:"averagePerUse"`
}

func (r *Repo) GetDepartmentUsage(ctx context.Context, since time.Time, department string) ([]DepartmentUsage, error) {
	tx := r.DB.WithContext(ctx).
		Table(models.UsageLogTable).
		Select(`department,
			SUM(quantity_used)::int AS total_used,
			COUNT(*)::int AS usage_count,
			COUNT(DISTINCT item_id)::int AS unique_item_count,
			ROUND(SUM(quantity_used)::numeric / COUNT(*), 2)::float8 AS average_per_use`).
		Where("used_at >= ?", since)
	if department != "" {
		tx = tx.Where("department = ?", department)
	}

	var rows []DepartmentUsage
	err := tx.
		Group("department").
		Order("total_used DESC").
		Scan(&rows).Error
	return rows, err
}

type CategoryUsage struct {
	Category        string `json:"category"`
	TotalUsed       int    `json:"totalUsed"`
	UsageCount      int    `json:"usageCount"`
	UniqueItemCount int    `json:"uniqueItemCount"`
	Percentage      int    `json:"percentage"` // 占窗口内总消耗的百分比，四舍五入
}

// GetCategoryUsage 类目维度的消耗分布：台账 join 物品取类目。
// 类目不冗余在台账上，物品改类目后历史也跟着新类目算。
func (r *Repo) GetCategoryUsage(ctx context.Context, since time.Time, department string) ([]CategoryUsage, error) {
	tx := r.DB.WithContext(ctx).
		Table(models.UsageLogTable+" u").
		Select(`i.category,
			SUM(u.quantity_used)::int AS total_used,
			COUNT(*)::int AS usage_count,
			COUNT(DISTINCT u.item_id)::int AS unique_item_count`).
		Joins("JOIN "+models.ItemTable+" i ON i.id = u.item_id").
		Where("u.used_at >= ?", since)
	if department != "" {
		tx = tx.Where("u.department = ?", department)
	}

	var rows []CategoryUsage
	if err := tx.
		Group("i.category").
		Order("total_used DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	applyCategoryPercentages(rows)
	return rows, nil
}

// 没有任何消耗时百分比保持 0，不除零
func applyCategoryPercentages(rows []CategoryUsage) {
	total := 0
	for _, row := range rows {
		total += row.TotalUsed
	}
	if total == 0 {
		return
	}
	for i := range rows {
		rows[i].Percentage = int(math.Round(float64(rows[i].TotalUsed) / float64(total) * 100))
	}
}

type UsageTotals struct {
	TotalUsed  int `json:"totalUsed"`
	UsageCount int `json:"usageCount"`
}

// GetUsageTotals 窗口内总消耗（仪表盘的近一月/近三月数字）
func (r *Repo) GetUsageTotals(ctx context.Context, since time.Time, department string) (*UsageTotals, error) {
	tx := r.DB.WithContext(ctx).
		Table(models.UsageLogTable).
		Select(`COALESCE(SUM(quantity_used), 0)::int AS total_used,
			COUNT(*)::int AS usage_count`).
		Where("used_at >= ?", since)
	if department != "" {
		tx = tx.Where("department = ?", department)
	}

	var t UsageTotals
	if err := tx.Scan(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

type MonthUsage struct {
	Month      int `json:"month"`
	TotalUsed  int `json:"totalUsed"`
	EntryCount int `json:"entryCount"`
}

// GetMonthlyUsage 年度报表：12 个月补零
func (r *Repo) GetMonthlyUsage(ctx context.Context, year int, department string) ([]MonthUsage, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	tx := r.DB.WithContext(ctx).
		Table(models.UsageLogTable).
		Select(`EXTRACT(MONTH FROM used_at)::int AS month,
			SUM(quantity_used)::int AS total_used,
			COUNT(*)::int AS entry_count`).
		Where("used_at >= ? AND used_at < ?", from, to)
	if department != "" {
		tx = tx.Where("department = ?", department)
	}

	var rows []MonthUsage
	if err := tx.Group("month").Order("month").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]MonthUsage, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, row := range rows {
		if row.Month >= 1 && row.Month <= 12 {
			out[row.Month-1] = row
		}
	}
	return out, nil
}
