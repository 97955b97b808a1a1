package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"Gin_postgres_redis_inventory_tool/models"
)

func TestApplyCategoryPercentages(t *testing.T) {
	rows := []CategoryUsage{
		{Category: "lab_equipment", TotalUsed: 30},
		{Category: "office_supplies", TotalUsed: 10},
	}
	applyCategoryPercentages(rows)
	if rows[0].Percentage != 75 || rows[1].Percentage != 25 {
		t.Errorf("percentages = %d/%d, want 75/25", rows[0].Percentage, rows[1].Percentage)
	}

	// 四舍五入
	rows = []CategoryUsage{
		{Category: "books", TotalUsed: 1},
		{Category: "sports", TotalUsed: 2},
	}
	applyCategoryPercentages(rows)
	if rows[0].Percentage != 33 || rows[1].Percentage != 67 {
		t.Errorf("percentages = %d/%d, want 33/67", rows[0].Percentage, rows[1].Percentage)
	}

	// 没有消耗不除零
	rows = []CategoryUsage{{Category: "other", TotalUsed: 0}}
	applyCategoryPercentages(rows)
	if rows[0].Percentage != 0 {
		t.Errorf("percentage = %d, want 0", rows[0].Percentage)
	}
}

func seedItemWithCategory(t *testing.T, r *Repo, name, category string) *models.Item {
	t.Helper()
	it := &models.Item{
		ID:            uuid.NewString(),
		Name:          name,
		Category:      category,
		Department:    "lab",
		Quantity:      100,
		MinStockLevel: 5,
		Unit:          "pieces",
		IsActive:      true,
	}
	if err := r.CreateItem(context.Background(), it); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return it
}

func recordUsage(t *testing.T, r *Repo, itemID, userID string, quantity int, usedAt time.Time) {
	t.Helper()
	if _, err := r.RecordUsage(context.Background(), RecordUsageInput{
		ItemID:       itemID,
		UserID:       userID,
		Department:   "lab",
		QuantityUsed: quantity,
		Purpose:      "class",
		UsedAt:       &usedAt,
	}); err != nil {
		t.Fatalf("record usage: %v", err)
	}
}

func TestGetCategoryUsage(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	staff := seedUser(t, r, models.RoleStaff)

	beakers := seedItemWithCategory(t, r, "beaker", "lab_equipment")
	flasks := seedItemWithCategory(t, r, "flask", "lab_equipment")
	paper := seedItemWithCategory(t, r, "paper", "office_supplies")

	now := time.Now().UTC()
	recordUsage(t, r, beakers.ID, staff.ID, 20, now.AddDate(0, 0, -10))
	recordUsage(t, r, flasks.ID, staff.ID, 10, now.AddDate(0, 0, -5))
	recordUsage(t, r, paper.ID, staff.ID, 10, now.AddDate(0, 0, -1))

	rows, err := r.GetCategoryUsage(ctx, now.AddDate(0, -1, 0), "")
	if err != nil {
		t.Fatalf("GetCategoryUsage: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("categories = %d, want 2", len(rows))
	}
	// 消耗多的在前
	if rows[0].Category != "lab_equipment" || rows[1].Category != "office_supplies" {
		t.Errorf("order = %q, %q", rows[0].Category, rows[1].Category)
	}
	if rows[0].TotalUsed != 30 || rows[0].UsageCount != 2 || rows[0].UniqueItemCount != 2 {
		t.Errorf("lab_equipment = %+v", rows[0])
	}
	if rows[0].Percentage != 75 || rows[1].Percentage != 25 {
		t.Errorf("percentages = %d/%d, want 75/25", rows[0].Percentage, rows[1].Percentage)
	}

	// 窗口外的记录不计入
	rows, err = r.GetCategoryUsage(ctx, now.AddDate(0, 0, -3), "")
	if err != nil {
		t.Fatalf("GetCategoryUsage: %v", err)
	}
	if len(rows) != 1 || rows[0].Category != "office_supplies" {
		t.Errorf("narrow window rows = %+v", rows)
	}
	if rows[0].Percentage != 100 {
		t.Errorf("single category percentage = %d, want 100", rows[0].Percentage)
	}
}

func TestGetUsageTotals(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	staff := seedUser(t, r, models.RoleStaff)
	it := seedItemWithCategory(t, r, "beaker", "lab_equipment")

	now := time.Now().UTC()
	recordUsage(t, r, it.ID, staff.ID, 7, now.AddDate(0, 0, -2))
	recordUsage(t, r, it.ID, staff.ID, 3, now.AddDate(0, -2, 0))

	got, err := r.GetUsageTotals(ctx, now.AddDate(0, -1, 0), "")
	if err != nil {
		t.Fatalf("GetUsageTotals: %v", err)
	}
	if got.TotalUsed != 7 || got.UsageCount != 1 {
		t.Errorf("last month = %+v, want total 7 count 1", got)
	}

	got, err = r.GetUsageTotals(ctx, now.AddDate(0, -3, 0), "")
	if err != nil {
		t.Fatalf("GetUsageTotals: %v", err)
	}
	if got.TotalUsed != 10 || got.UsageCount != 2 {
		t.Errorf("last 3 months = %+v, want total 10 count 2", got)
	}

	// 空窗口返回零值而不是报错
	got, err = r.GetUsageTotals(ctx, now.AddDate(1, 0, 0), "")
	if err != nil {
		t.Fatalf("GetUsageTotals: %v", err)
	}
	if got.TotalUsed != 0 || got.UsageCount != 0 {
		t.Errorf("future window = %+v, want zeros", got)
	}
}
