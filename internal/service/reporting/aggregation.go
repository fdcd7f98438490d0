package reporting

import (
	"fmt"
	"math"
	"strings"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

const (
	// LowStockThreshold is the quantity below which a record counts as low stock.
	LowStockThreshold = 5
	// UncategorizedLabel names the bucket for records without a category.
	UncategorizedLabel = "Uncategorized"
)

// Engine derives aggregate statistics from a record set. It holds no state, so
// computing twice over the same records yields equal snapshots.
type Engine struct{}

// NewEngine returns an aggregation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compute groups records by category and totals units, value and low stock.
// Groups are ordered by descending count; ties keep first-encountered order.
func (e *Engine) Compute(records []models.Record) models.AggregateSnapshot {
	if len(records) == 0 {
		return models.EmptyAggregate()
	}

	snapshot := models.AggregateSnapshot{State: models.AggregateReady}
	index := make(map[string]int)
	var groups []models.CategoryShare

	for _, r := range records {
		category := CategoryOf(r)
		pos, ok := index[category]
		if !ok {
			pos = len(groups)
			index[category] = pos
			groups = append(groups, models.CategoryShare{Category: category})
		}
		groups[pos].Count++

		qty := max(r.Quantity, 0)
		price := r.UnitPrice
		if math.IsNaN(price) || math.IsInf(price, 0) {
			price = 0
		}

		snapshot.TotalUnits += qty
		snapshot.TotalValue += price * float64(qty)
		if r.Quantity < LowStockThreshold {
			snapshot.LowStockCount++
		}
	}

	// Insertion sort is stable, which keeps the first-encountered order on ties.
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && groups[j].Count > groups[j-1].Count; j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}

	total := 0
	for _, g := range groups {
		total += g.Count
	}
	for i := range groups {
		groups[i].Percentage = 100 * float64(groups[i].Count) / float64(total)
	}

	snapshot.PerCategory = groups
	snapshot.CategoryCount = len(groups)
	return snapshot
}

// CategoryOf returns the bucket a record is grouped under.
func CategoryOf(r models.Record) string {
	if strings.TrimSpace(r.Category) == "" {
		return UncategorizedLabel
	}
	return r.Category
}

// FormatPercent rounds a percentage to one decimal place for display.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", math.Round(p*10)/10)
}

// Summary renders a snapshot as a short multi-line report.
func Summary(s models.AggregateSnapshot) string {
	switch s.State {
	case models.AggregateNotLoaded:
		return "Stock summary: not loaded yet."
	case models.AggregateEmpty:
		return "Stock summary: no records yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock summary: %d units across %d categories, total value %.2f, %d low on stock (<%d).",
		s.TotalUnits, s.CategoryCount, s.TotalValue, s.LowStockCount, LowStockThreshold)
	for _, g := range s.PerCategory {
		fmt.Fprintf(&b, "\n  %s: %d (%s)", g.Category, g.Count, FormatPercent(g.Percentage))
	}
	return b.String()
}
