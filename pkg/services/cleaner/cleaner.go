package cleaner

import (
	"context"
	"fmt"
	"math"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type valueColumn struct {
	index int
	year  int
	month int
}

// Cleaner turns raw export rows into the canonical long-format sales table.
type Cleaner struct {
	layout   Layout
	validate *validator.Validate
}

func NewCleaner(layout Layout) (*Cleaner, error) {
	v := validator.New()
	if err := v.Struct(layout); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	if err := layout.check(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return &Cleaner{
		layout:   layout,
		validate: v,
	}, nil
}

func (c *Cleaner) Clean(ctx context.Context, raw []domain.RawRecord) (domain.SalesTable, error) {
	logger := zerolog.Ctx(ctx)
	l := c.layout

	if len(raw) < l.HeaderRows {
		return domain.SalesTable{}, domain.NewError(domain.ErrSchema, "clean",
			"missing expected columns: export has %d rows, layout needs %d header rows", len(raw), l.HeaderRows)
	}
	header := raw[:l.HeaderRows]
	end := len(raw) - l.FooterRows
	if end < l.HeaderRows {
		end = l.HeaderRows
	}
	data := raw[l.HeaderRows:end]

	if err := c.checkIdentifiers(header); err != nil {
		return domain.SalesTable{}, err
	}

	columns, dropped := c.resolveColumns(header)
	if len(columns) == 0 {
		return domain.SalesTable{}, domain.NewError(domain.ErrSchema, "clean",
			"missing expected columns: no sales columns resolve to %v", c.valueFields())
	}

	stats := domain.CleanStats{
		RowsRead:       len(raw),
		RowsDropped:    len(raw) - len(data),
		ColumnsDropped: dropped,
	}

	var records []domain.SalesRecord
	for _, row := range data {
		group := field(row.Fields, l.GroupColumn)
		customer := field(row.Fields, l.CustomerColumn)
		product := field(row.Fields, l.ProductColumn)
		if group == "" || customer == "" || product == "" {
			stats.RowsDropped++
			continue
		}

		for _, col := range columns {
			value, ok := coerceValue(field(row.Fields, col.index))
			if !ok {
				stats.CellsExcluded++
				continue
			}
			records = append(records, domain.SalesRecord{
				Seq:           int64(len(records)),
				CustomerGroup: group,
				Customer:      customer,
				Product:       product,
				Year:          col.year,
				Month:         col.month,
				Value:         value,
			})
		}
	}

	table := c.Refine(domain.SalesTable{Records: records, Stats: stats})
	if table.Len() == 0 {
		return domain.SalesTable{}, domain.NewError(domain.ErrSchema, "clean", "no sales records after cleaning")
	}
	// every grouped sum is bounded by the table total, so it must fit the store's BIGINT
	var total int64
	for _, r := range table.Records {
		if r.Value > math.MaxInt64-total {
			return domain.SalesTable{}, domain.NewError(domain.ErrSchema, "clean",
				"sales total exceeds the int64 range at record %d (%s / %s)", r.Seq, r.Customer, r.Product)
		}
		total += r.Value
	}

	logger.Info().
		Int("rows_read", table.Stats.RowsRead).
		Int("rows_dropped", table.Stats.RowsDropped).
		Strs("columns_dropped", table.Stats.ColumnsDropped).
		Int("cells_excluded", table.Stats.CellsExcluded).
		Int("records", table.Len()).
		Msg("sales table cleaned")

	return table, nil
}

// Refine drops records that violate the canonical schema and renumbers Seq in table order.
// Applying it to its own output returns the same table.
func (c *Cleaner) Refine(table domain.SalesTable) domain.SalesTable {
	out := domain.SalesTable{
		Records: make([]domain.SalesRecord, 0, len(table.Records)),
		Stats:   table.Stats,
	}
	for _, r := range table.Records {
		r.Seq = int64(len(out.Records))
		if err := c.validate.Struct(r); err != nil {
			out.Stats.CellsExcluded++
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out
}

// identifierColumns maps the canonical fields that come from fixed columns to their index.
// Year, month and sales value come from the melted value columns instead.
func (c *Cleaner) identifierColumns() map[domain.Field]int {
	return map[domain.Field]int{
		domain.FieldCustomerGroup: c.layout.GroupColumn,
		domain.FieldCustomer:      c.layout.CustomerColumn,
		domain.FieldProduct:       c.layout.ProductColumn,
	}
}

// valueFields lists the canonical fields carried by the year/month sales columns.
func (c *Cleaner) valueFields() []domain.Field {
	columns := c.identifierColumns()
	var fields []domain.Field
	for _, f := range domain.CanonicalFields {
		if _, ok := columns[f]; !ok {
			fields = append(fields, f)
		}
	}
	return fields
}

func (c *Cleaner) checkIdentifiers(header []domain.RawRecord) error {
	columns := c.identifierColumns()

	var missing []domain.Field
	for _, f := range domain.CanonicalFields {
		col, ok := columns[f]
		if !ok {
			continue
		}
		label := ""
		for _, row := range header {
			if label = field(row.Fields, col); label != "" {
				break
			}
		}
		if label != "" && !matchesAlias(f, label) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return domain.NewError(domain.ErrSchema, "clean", "missing expected columns: %v", missing)
	}
	return nil
}

func (c *Cleaner) resolveColumns(header []domain.RawRecord) ([]valueColumn, []string) {
	l := c.layout
	width := 0
	for _, row := range header {
		if len(row.Fields) > width {
			width = len(row.Fields)
		}
	}

	var dropped []string
	for col := 0; col < l.FirstValueColumn && col < width; col++ {
		if col == l.GroupColumn || col == l.CustomerColumn || col == l.ProductColumn {
			continue
		}
		dropped = append(dropped, columnLabel(header, col))
	}

	var columns []valueColumn
	yearLabel := ""
	for col := l.FirstValueColumn; col < width; col++ {
		// Tableau merges the year cell over its months; carry it forward.
		if y := field(header[l.YearRow].Fields, col); y != "" {
			yearLabel = y
		}
		monthLabel := field(header[l.MonthRow].Fields, col)

		year, month, ok := resolvePeriod(yearLabel, monthLabel)
		if !ok {
			dropped = append(dropped, columnLabel(header, col))
			continue
		}
		columns = append(columns, valueColumn{index: col, year: year, month: month})
	}
	return columns, dropped
}

func columnLabel(header []domain.RawRecord, col int) string {
	label := ""
	for _, row := range header {
		v := field(row.Fields, col)
		if v == "" {
			continue
		}
		if label != "" {
			label += "_"
		}
		label += v
	}
	if label == "" {
		return fmt.Sprintf("column %d", col+1)
	}
	return label
}
