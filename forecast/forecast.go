// Package forecast classifies stock-out risk per item from historical
// consumption. It is a pure computation over snapshots: callers fetch the item
// list and the month-grouped usage aggregates, the engine never touches storage.
package forecast

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"Gin_postgres_redis_inventory_tool/models"
)

// Risk buckets, most severe first.
const (
	RiskCritical = "critical"
	RiskHigh     = "high"
	RiskMedium   = "medium"
	RiskLow      = "low"
)

const DefaultWindowMonths = 6

var riskOrder = map[string]int{
	RiskCritical: 0,
	RiskHigh:     1,
	RiskMedium:   2,
	RiskLow:      3,
}

// MonthlyUsage is one month's consumption total for a single item.
type MonthlyUsage struct {
	Year      int `json:"year"`
	Month     int `json:"month"`
	TotalUsed int `json:"totalUsed"`
}

// ItemSummary is the slice of the item the forecast response carries.
type ItemSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Department    string `json:"department"`
	CurrentStock  int    `json:"currentStock"`
	MinStockLevel int    `json:"minStockLevel"`
}

// ItemForecast is the per-item classification result.
type ItemForecast struct {
	Item                ItemSummary    `json:"item"`
	UsageHistory        []MonthlyUsage `json:"usageHistory"`
	AverageMonthlyUsage float64        `json:"averageMonthlyUsage"`
	PredictedUsage      int            `json:"predictedUsage"`
	StockRisk           string         `json:"stockRisk"`
	DaysUntilStockout   *int           `json:"daysUntilStockout"` // nil when there is no usage history
	Recommendation      string         `json:"recommendation"`
}

// Summary counts items per risk bucket.
type Summary struct {
	TotalItems   int `json:"totalItems"`
	CriticalRisk int `json:"criticalRisk"`
	HighRisk     int `json:"highRisk"`
	MediumRisk   int `json:"mediumRisk"`
	LowRisk      int `json:"lowRisk"`
}

// Result is the full forecast: per-item list sorted by severity plus bucket counts.
type Result struct {
	Forecast []ItemForecast `json:"forecast"`
	Summary  Summary        `json:"summary"`
}

// WindowStart returns the first day of the month `months` months before now.
// Usage on or after this instant falls inside the trailing window.
func WindowStart(now time.Time, months int) time.Time {
	if months <= 0 {
		months = DefaultWindowMonths
	}
	return time.Date(now.Year(), now.Month()-time.Month(months), 1, 0, 0, 0, 0, now.Location())
}

// Build computes the forecast for the given items. usage maps item ID to its
// month-grouped consumption inside the window, oldest month first. Items with
// no usage entries forecast zero predicted usage and an undefined stockout date.
func Build(items []models.Item, usage map[string][]MonthlyUsage) Result {
	out := make([]ItemForecast, 0, len(items))
	for _, it := range items {
		out = append(out, buildOne(it, usage[it.ID]))
	}

	// Severity ascending, ties keep the incoming item order.
	sort.SliceStable(out, func(i, j int) bool {
		return riskOrder[out[i].StockRisk] < riskOrder[out[j].StockRisk]
	})

	s := Summary{TotalItems: len(out)}
	for _, f := range out {
		switch f.StockRisk {
		case RiskCritical:
			s.CriticalRisk++
		case RiskHigh:
			s.HighRisk++
		case RiskMedium:
			s.MediumRisk++
		case RiskLow:
			s.LowRisk++
		}
	}

	return Result{Forecast: out, Summary: s}
}

func buildOne(it models.Item, history []MonthlyUsage) ItemForecast {
	if history == nil {
		history = []MonthlyUsage{}
	}

	total := 0
	for _, m := range history {
		total += m.TotalUsed
	}

	// One-step moving average: total over months that actually saw usage.
	// The months==0 branch never divides.
	var avg decimal.Decimal
	if monthsObserved := len(history); monthsObserved > 0 {
		avg = decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(monthsObserved)))
	}
	predicted := int(avg.Ceil().IntPart())

	quantity := decimal.NewFromInt(int64(it.Quantity))

	var daysUntilStockout *int
	if avg.IsPositive() {
		d := int(quantity.Div(avg).Mul(decimal.NewFromInt(30)).Floor().IntPart())
		daysUntilStockout = &d
	}

	return ItemForecast{
		Item: ItemSummary{
			ID:            it.ID,
			Name:          it.Name,
			Category:      it.Category,
			Department:    it.Department,
			CurrentStock:  it.Quantity,
			MinStockLevel: it.MinStockLevel,
		},
		UsageHistory:        history,
		AverageMonthlyUsage: avg.InexactFloat64(),
		PredictedUsage:      predicted,
		StockRisk:           classify(it.Quantity, it.MinStockLevel, predicted),
		DaysUntilStockout:   daysUntilStockout,
		Recommendation:      recommend(it.Quantity, predicted, it.MinStockLevel),
	}
}

// classify picks the risk bucket; evaluation order is fixed, first match wins.
func classify(quantity, minStockLevel, predictedUsage int) string {
	switch {
	case quantity == 0:
		return RiskCritical
	case quantity <= minStockLevel:
		return RiskHigh
	case quantity <= predictedUsage:
		return RiskMedium
	default:
		return RiskLow
	}
}

func recommend(currentStock, predictedUsage, minStockLevel int) string {
	if currentStock == 0 {
		return "URGENT: Restock immediately"
	}
	if currentStock <= minStockLevel {
		return "HIGH PRIORITY: Restock soon"
	}
	if currentStock <= predictedUsage {
		return "MEDIUM PRIORITY: Consider restocking"
	}
	monitorCeiling := decimal.NewFromInt(int64(predictedUsage)).Mul(decimal.NewFromFloat(1.5))
	if decimal.NewFromInt(int64(currentStock)).LessThanOrEqual(monitorCeiling) {
		return "LOW PRIORITY: Monitor stock levels"
	}
	return "SUFFICIENT: Stock levels are adequate"
}
