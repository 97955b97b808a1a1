package forecast

import (
	"testing"
	"time"

	"Gin_postgres_redis_inventory_tool/models"
)

func item(id string, quantity, minStock int) models.Item {
	return models.Item{
		ID:            id,
		Name:          "item " + id,
		Category:      "lab_equipment",
		Department:    "lab",
		Quantity:      quantity,
		MinStockLevel: minStock,
		IsActive:      true,
	}
}

func one(t *testing.T, it models.Item, history []MonthlyUsage) ItemForecast {
	t.Helper()
	usage := map[string][]MonthlyUsage{}
	if history != nil {
		usage[it.ID] = history
	}
	res := Build([]models.Item{it}, usage)
	if len(res.Forecast) != 1 {
		t.Fatalf("expected 1 forecast entry, got %d", len(res.Forecast))
	}
	return res.Forecast[0]
}

func TestZeroQuantityIsAlwaysCritical(t *testing.T) {
	// 库存为 0 一律 critical，与历史无关
	f := one(t, item("a", 0, 100), []MonthlyUsage{{Year: 2026, Month: 7, TotalUsed: 50}})
	if f.StockRisk != RiskCritical {
		t.Errorf("risk = %q, want critical", f.StockRisk)
	}
	if f.Recommendation != "URGENT: Restock immediately" {
		t.Errorf("recommendation = %q", f.Recommendation)
	}

	f = one(t, item("b", 0, 0), nil)
	if f.StockRisk != RiskCritical {
		t.Errorf("risk with no history = %q, want critical", f.StockRisk)
	}
}

func TestQuantityAtMinStockIsHigh(t *testing.T) {
	f := one(t, item("a", 5, 5), nil)
	if f.StockRisk != RiskHigh {
		t.Errorf("risk = %q, want high", f.StockRisk)
	}
}

func TestQuantityAtPredictedUsageIsMedium(t *testing.T) {
	// avg = 10, predicted = 10, quantity = 10 > minStock=2 → medium
	f := one(t, item("a", 10, 2), []MonthlyUsage{{Year: 2026, Month: 7, TotalUsed: 10}})
	if f.PredictedUsage != 10 {
		t.Fatalf("predicted = %d, want 10", f.PredictedUsage)
	}
	if f.StockRisk != RiskMedium {
		t.Errorf("risk = %q, want medium", f.StockRisk)
	}
}

func TestNoHistoryScenario(t *testing.T) {
	// Item{quantity:5, minStockLevel:5}，无历史：
	// high 风险、predicted=0、stockout 未定义、建议尽快补货
	f := one(t, item("a", 5, 5), nil)
	if f.StockRisk != RiskHigh {
		t.Errorf("risk = %q, want high", f.StockRisk)
	}
	if f.PredictedUsage != 0 {
		t.Errorf("predicted = %d, want 0", f.PredictedUsage)
	}
	if f.AverageMonthlyUsage != 0 {
		t.Errorf("average = %v, want 0", f.AverageMonthlyUsage)
	}
	if f.DaysUntilStockout != nil {
		t.Errorf("daysUntilStockout = %v, want nil", *f.DaysUntilStockout)
	}
	if f.Recommendation != "HIGH PRIORITY: Restock soon" {
		t.Errorf("recommendation = %q", f.Recommendation)
	}
}

func TestMovingAverageAndStockoutDays(t *testing.T) {
	history := []MonthlyUsage{
		{Year: 2026, Month: 5, TotalUsed: 4},
		{Year: 2026, Month: 6, TotalUsed: 5},
		{Year: 2026, Month: 7, TotalUsed: 6},
	}
	// avg = 5, predicted = 5, days = floor(20/5*30) = 120
	f := one(t, item("a", 20, 2), history)
	if f.AverageMonthlyUsage != 5 {
		t.Errorf("average = %v, want 5", f.AverageMonthlyUsage)
	}
	if f.PredictedUsage != 5 {
		t.Errorf("predicted = %d, want 5", f.PredictedUsage)
	}
	if f.DaysUntilStockout == nil || *f.DaysUntilStockout != 120 {
		t.Errorf("daysUntilStockout = %v, want 120", f.DaysUntilStockout)
	}
	if f.StockRisk != RiskLow {
		t.Errorf("risk = %q, want low", f.StockRisk)
	}
}

func TestPredictedUsageRoundsUp(t *testing.T) {
	history := []MonthlyUsage{
		{Year: 2026, Month: 6, TotalUsed: 3},
		{Year: 2026, Month: 7, TotalUsed: 4},
	}
	// avg = 3.5 → predicted = ceil(3.5) = 4
	f := one(t, item("a", 100, 2), history)
	if f.PredictedUsage != 4 {
		t.Errorf("predicted = %d, want 4", f.PredictedUsage)
	}
	// days = floor(100/3.5*30) = floor(857.14) = 857
	if f.DaysUntilStockout == nil || *f.DaysUntilStockout != 857 {
		t.Errorf("daysUntilStockout = %v, want 857", f.DaysUntilStockout)
	}
}

func TestRecommendationLadder(t *testing.T) {
	history := []MonthlyUsage{{Year: 2026, Month: 7, TotalUsed: 10}}
	cases := []struct {
		quantity int
		want     string
	}{
		{0, "URGENT: Restock immediately"},
		{2, "HIGH PRIORITY: Restock soon"},             // <= minStock(2)
		{10, "MEDIUM PRIORITY: Consider restocking"},   // <= predicted(10)
		{15, "LOW PRIORITY: Monitor stock levels"},     // <= predicted*1.5
		{16, "SUFFICIENT: Stock levels are adequate"},  // above the monitor band
	}
	for _, c := range cases {
		f := one(t, item("a", c.quantity, 2), history)
		if f.Recommendation != c.want {
			t.Errorf("quantity %d: recommendation = %q, want %q", c.quantity, f.Recommendation, c.want)
		}
	}
}

func TestSortBySeverityKeepsTiesStable(t *testing.T) {
	items := []models.Item{
		item("low-1", 50, 2),
		item("critical-1", 0, 2),
		item("low-2", 60, 2),
		item("high-1", 2, 2),
		item("critical-2", 0, 2),
	}
	res := Build(items, nil)

	gotOrder := make([]string, 0, len(res.Forecast))
	for _, f := range res.Forecast {
		gotOrder = append(gotOrder, f.Item.ID)
	}
	wantOrder := []string{"critical-1", "critical-2", "high-1", "low-1", "low-2"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("order = %v, want %v", gotOrder, wantOrder)
		}
	}

	s := res.Summary
	if s.TotalItems != 5 || s.CriticalRisk != 2 || s.HighRisk != 1 || s.MediumRisk != 0 || s.LowRisk != 2 {
		t.Errorf("summary = %+v", s)
	}
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, time.August, 31, 15, 4, 5, 0, time.UTC)
	got := WindowStart(now, 6)
	want := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WindowStart = %v, want %v", got, want)
	}

	// 跨年回绕
	got = WindowStart(now, 12)
	want = time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WindowStart(12) = %v, want %v", got, want)
	}

	// 非法窗口回落到默认值
	got = WindowStart(now, 0)
	want = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WindowStart(0) = %v, want %v", got, want)
	}
}
