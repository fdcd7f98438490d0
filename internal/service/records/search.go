package records

import (
	"strings"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
	"github.com/mamadbah2/meuestoque/internal/service/reporting"
)

// Group is the set of records sharing one category.
type Group struct {
	Category string
	Records  []models.Record
}

// Filter returns the records whose name or category contains text, ignoring case.
// An empty text matches everything. The input slice is not modified.
func Filter(records []models.Record, text string) []models.Record {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if needle == "" ||
			strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.Category), needle) {
			out = append(out, r)
		}
	}
	return out
}

// GroupByCategory groups records in first-encountered category order.
func GroupByCategory(records []models.Record) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		category := reporting.CategoryOf(r)
		pos, ok := index[category]
		if !ok {
			pos = len(groups)
			index[category] = pos
			groups = append(groups, Group{Category: category})
		}
		groups[pos].Records = append(groups[pos].Records, r)
	}
	return groups
}
