package models

// AggregateState distinguishes a computed snapshot from placeholder ones.
type AggregateState string

const (
	// AggregateNotLoaded means no record set has been fetched yet.
	AggregateNotLoaded AggregateState = "not_loaded"
	// AggregateEmpty means the fetched record set has no records.
	AggregateEmpty AggregateState = "empty"
	AggregateReady AggregateState = "ready"
)

// CategoryShare is one category bucket of an AggregateSnapshot.
type CategoryShare struct {
	Category   string
	Count      int
	Percentage float64
}

// AggregateSnapshot holds statistics derived from a record set. It is never persisted.
type AggregateSnapshot struct {
	State         AggregateState
	PerCategory   []CategoryShare
	TotalUnits    int
	TotalValue    float64
	LowStockCount int
	CategoryCount int
}

// NotLoadedAggregate is the snapshot reported before the first successful fetch.
func NotLoadedAggregate() AggregateSnapshot {
	return AggregateSnapshot{State: AggregateNotLoaded}
}

// EmptyAggregate is the snapshot of an empty record set.
func EmptyAggregate() AggregateSnapshot {
	return AggregateSnapshot{State: AggregateEmpty, PerCategory: []CategoryShare{}}
}
