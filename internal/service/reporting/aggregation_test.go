package reporting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

func rec(id, category string, price float64, qty int) models.Record {
	return models.Record{ID: id, Name: "item-" + id, UnitPrice: price, Category: category, Quantity: qty}
}

func TestCompute_TotalsAndLowStock(t *testing.T) {
	engine := NewEngine()

	snap := engine.Compute([]models.Record{
		rec("1", "A", 10, 2),
		rec("2", "A", 5, 3),
	})
	assert.Equal(t, 35.0, snap.TotalValue)
	assert.Equal(t, 5, snap.TotalUnits)

	snap = engine.Compute([]models.Record{
		rec("1", "A", 1, 3),
		rec("2", "A", 1, 5),
		rec("3", "A", 1, 10),
	})
	assert.Equal(t, 1, snap.LowStockCount)
}

func TestCompute_OrderingAndTies(t *testing.T) {
	snap := NewEngine().Compute([]models.Record{
		rec("1", "Móveis", 1, 1),
		rec("2", "Eletrônicos", 1, 1),
		rec("3", "Outros", 1, 1),
		rec("4", "Eletrônicos", 1, 1),
		rec("5", "Outros", 1, 1),
		rec("6", "Periféricos", 1, 1),
	})

	require.Len(t, snap.PerCategory, 4)
	got := make([]string, 0, len(snap.PerCategory))
	for _, g := range snap.PerCategory {
		got = append(got, g.Category)
	}
	assert.Equal(t, []string{"Eletrônicos", "Outros", "Móveis", "Periféricos"}, got)
	assert.Equal(t, 4, snap.CategoryCount)
}

func TestCompute_UncategorizedBucket(t *testing.T) {
	snap := NewEngine().Compute([]models.Record{
		rec("1", "", 1, 1),
		rec("2", "   ", 1, 1),
		rec("3", "A", 1, 1),
	})

	require.Len(t, snap.PerCategory, 2)
	assert.Equal(t, UncategorizedLabel, snap.PerCategory[0].Category)
	assert.Equal(t, 2, snap.PerCategory[0].Count)
}

func TestCompute_PartitionAndPercentages(t *testing.T) {
	records := []models.Record{
		rec("1", "A", 1, 1), rec("2", "B", 1, 1), rec("3", "C", 1, 1),
		rec("4", "A", 1, 1), rec("5", "", 1, 1), rec("6", "B", 1, 1), rec("7", "A", 1, 1),
	}
	snap := NewEngine().Compute(records)

	count := 0
	pct := 0.0
	for _, g := range snap.PerCategory {
		count += g.Count
		pct += g.Percentage
	}
	assert.Equal(t, len(records), count)
	assert.InDelta(t, 100.0, pct, 1e-9)
	assert.InDelta(t, 100.0*3/7, snap.PerCategory[0].Percentage, 1e-12)
}

func TestCompute_ZeroCoercion(t *testing.T) {
	snap := NewEngine().Compute([]models.Record{
		{ID: "1", Name: "broken", UnitPrice: math.NaN(), Category: "A", Quantity: 4},
		{ID: "2", Name: "negative", UnitPrice: 2, Category: "A", Quantity: -3},
	})

	assert.Equal(t, 4, snap.TotalUnits)
	assert.Equal(t, 0.0, snap.TotalValue)
	assert.Equal(t, 2, snap.LowStockCount)
}

func TestCompute_EmptyIsDistinctFromNotLoaded(t *testing.T) {
	snap := NewEngine().Compute(nil)

	assert.Equal(t, models.AggregateEmpty, snap.State)
	assert.Empty(t, snap.PerCategory)
	assert.Zero(t, snap.TotalValue)
	assert.NotEqual(t, models.NotLoadedAggregate().State, snap.State)
}

func TestCompute_Idempotent(t *testing.T) {
	engine := NewEngine()
	records := []models.Record{rec("1", "A", 2.5, 4), rec("2", "B", 1, 9)}

	assert.Equal(t, engine.Compute(records), engine.Compute(records))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "42.9%", FormatPercent(100.0*3/7))
	assert.Equal(t, "33.3%", FormatPercent(100.0/3))
	assert.Equal(t, "100.0%", FormatPercent(100))
}

func TestSummary(t *testing.T) {
	assert.Contains(t, Summary(models.NotLoadedAggregate()), "not loaded")
	assert.Contains(t, Summary(models.EmptyAggregate()), "no records")

	out := Summary(NewEngine().Compute([]models.Record{rec("1", "A", 10, 2), rec("2", "B", 5, 3)}))
	assert.Contains(t, out, "5 units across 2 categories")
	assert.Contains(t, out, "total value 35.00")
	assert.Contains(t, out, "A: 1 (50.0%)")
}
