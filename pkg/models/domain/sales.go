package domain

import "slices"

// RawRecord is one physical row of a distributor export before cleaning.
type RawRecord struct {
	Line   int
	Fields []string
}

// Field enumerates the canonical sales schema
type Field string

const (
	FieldCustomerGroup Field = "customer_group"
	FieldCustomer      Field = "customer"
	FieldProduct       Field = "product"
	FieldYear          Field = "year"
	FieldMonth         Field = "month"
	FieldSalesValue    Field = "sales_value"
)

// CanonicalFields lists the schema in column order.
var CanonicalFields = []Field{
	FieldCustomerGroup,
	FieldCustomer,
	FieldProduct,
	FieldYear,
	FieldMonth,
	FieldSalesValue,
}

type SalesRecord struct {
	Seq           int64  `validate:"gte=0"`
	CustomerGroup string `validate:"required"`
	Customer      string `validate:"required"`
	Product       string `validate:"required"`
	Year          int    `validate:"gte=1900,lte=2999"`
	Month         int    `validate:"gte=1,lte=12"`
	Value         int64  `validate:"gte=0"`
}

// CleanStats describes what the cleaner discarded.
type CleanStats struct {
	RowsRead       int
	RowsDropped    int
	ColumnsDropped []string
	CellsExcluded  int
}

// SalesTable is the cleaned working dataset. It is not modified after cleaning.
type SalesTable struct {
	Records []SalesRecord
	Stats   CleanStats
}

func (t SalesTable) Len() int {
	return len(t.Records)
}

func (t SalesTable) Total() int64 {
	var total int64
	for _, r := range t.Records {
		total += r.Value
	}
	return total
}

// Years returns the distinct years in ascending order.
func (t SalesTable) Years() []int {
	seen := make(map[int]struct{})
	var years []int
	for _, r := range t.Records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	slices.Sort(years)
	return years
}
