package adapters

import (
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
)

func MapDomainSalesRecordToStore(r domain.SalesRecord) store.SalesRow {
	return store.SalesRow{
		Seq:           r.Seq,
		CustomerGroup: r.CustomerGroup,
		Customer:      r.Customer,
		Product:       r.Product,
		Year:          r.Year,
		Month:         r.Month,
		SalesValue:    r.Value,
	}
}

func MapSalesTableToStore(table domain.SalesTable) []store.SalesRow {
	rows := make([]store.SalesRow, 0, len(table.Records))
	for _, r := range table.Records {
		rows = append(rows, MapDomainSalesRecordToStore(r))
	}
	return rows
}

func MapStoreTotalsToMetricPoints(totals []store.Total) []domain.MetricPoint {
	points := make([]domain.MetricPoint, 0, len(totals))
	for _, t := range totals {
		points = append(points, domain.MetricPoint{Key: t.Key, Value: t.Value})
	}
	return points
}
