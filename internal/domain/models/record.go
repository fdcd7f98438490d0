package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one inventory item entry as confirmed by the server.
type Record struct {
	ID        string  `json:"id"`
	Name      string  `json:"nome"`
	UnitPrice float64 `json:"preco"`
	Category  string  `json:"categoria"`
	Quantity  int     `json:"quantidade"`
}

// RecordFields carries the writable fields of a record (everything but the id).
type RecordFields struct {
	Name      string  `json:"nome"`
	UnitPrice float64 `json:"preco"`
	Category  string  `json:"categoria"`
	Quantity  int     `json:"quantidade"`
}

// Fields strips the server-assigned id.
func (r Record) Fields() RecordFields {
	return RecordFields{
		Name:      r.Name,
		UnitPrice: r.UnitPrice,
		Category:  r.Category,
		Quantity:  r.Quantity,
	}
}

// Value is the stock value of the record (unit price times quantity).
func (r Record) Value() float64 {
	return r.UnitPrice * float64(r.Quantity)
}

// UnmarshalJSON decodes a record leniently. The backend keeps ids as numbers and
// quantities as doubles, and older rows may carry nulls; numbers that are missing
// or cannot be parsed decode as zero.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	*r = Record{
		ID:        stringValue(raw["id"]),
		Name:      stringValue(raw["nome"]),
		UnitPrice: floatOrZero(raw["preco"]),
		Category:  stringValue(raw["categoria"]),
		Quantity:  intOrZero(raw["quantidade"]),
	}
	return nil
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func floatOrZero(value any) float64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

func intOrZero(value any) int {
	f := floatOrZero(value)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}
