package store

type SalesRow struct {
	Seq           int64
	CustomerGroup string
	Customer      string
	Product       string
	Year          int
	Month         int
	SalesValue    int64
}

type SalesStats struct {
	RecordsCount int64
	FirstYear    int
	LastYear     int
	TotalValue   int64
}

// Total is one grouped sum. FirstSeen is the lowest seq contributing to the group.
type Total struct {
	Key       string
	Value     int64
	FirstSeen int64
}

// Cell is a grouped sum over several dimensions, Keys in dimension order.
type Cell struct {
	Keys      []string
	Value     int64
	FirstSeen int64
}
