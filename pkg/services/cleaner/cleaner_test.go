package cleaner

import (
	"context"
	"strings"
	"testing"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	cleaner *Cleaner
	ctx     context.Context
}

func setupFixture(t *testing.T) *fixture {
	c, err := NewCleaner(DefaultLayout())
	require.NoError(t, err)
	return &fixture{
		cleaner: c,
		ctx:     context.Background(),
	}
}

func rows(lines ...string) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(lines))
	for i, line := range lines {
		records = append(records, domain.RawRecord{Line: i + 1, Fields: strings.Split(line, "\t")})
	}
	return records
}

func sampleExport() []domain.RawRecord {
	return rows(
		"Customer Group\tCustomer\tProducts\t2023\t\t2024\t\tGrand Total",
		"\t\t\tNovember\tDecember\tJanuary\tFebruary\tTotal",
		"Whole Foods CO\tWF Boulder\tEthiopia COV 12oz (WB) - 1234\t10\t\t1,200\t5\t1215",
		"Whole Foods CO\tWF Denver\tEthiopia COV 12oz (WB) - 1234\t$7\tn/a\t-3\t2.0\t9",
		"\t\t\t\t\t\t\t",
		"Safeway CO\t\tGuatemala\t4\t4\t4\t4\t16",
		"Grand Total\t\t\t17\t0\t1200\t7\t1240",
	)
}

func TestNewCleaner(t *testing.T) {
	tests := []struct {
		name    string
		layout  func(l Layout) Layout
		wantErr bool
	}{
		{name: "default layout", layout: func(l Layout) Layout { return l }},
		{name: "negative offset", layout: func(l Layout) Layout { l.FooterRows = -1; return l }, wantErr: true},
		{name: "no header rows", layout: func(l Layout) Layout { l.HeaderRows = 0; return l }, wantErr: true},
		{name: "month row outside header", layout: func(l Layout) Layout { l.MonthRow = 2; return l }, wantErr: true},
		{name: "duplicate identifier column", layout: func(l Layout) Layout { l.CustomerColumn = 0; return l }, wantErr: true},
		{name: "identifier after values", layout: func(l Layout) Layout { l.ProductColumn = 5; return l }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCleaner(tt.layout(DefaultLayout()))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestCleaner_Clean(t *testing.T) {
	f := setupFixture(t)

	table, err := f.cleaner.Clean(f.ctx, sampleExport())
	require.NoError(t, err)

	// WF Boulder: 10, 1200, 5 (empty December excluded); WF Denver: 7, 2 (n/a and -3 excluded).
	require.Equal(t, 5, table.Len())
	assert.Equal(t, domain.SalesRecord{
		Seq:           0,
		CustomerGroup: "Whole Foods CO",
		Customer:      "WF Boulder",
		Product:       "Ethiopia COV 12oz (WB) - 1234",
		Year:          2023,
		Month:         11,
		Value:         10,
	}, table.Records[0])
	assert.Equal(t, int64(1200), table.Records[1].Value)
	assert.Equal(t, 2024, table.Records[1].Year)
	assert.Equal(t, 1, table.Records[1].Month)
	assert.Equal(t, int64(7), table.Records[3].Value)
	assert.Equal(t, int64(2), table.Records[4].Value)
	assert.Equal(t, int64(1224), table.Total())
	assert.Equal(t, []int{2023, 2024}, table.Years())

	for i, r := range table.Records {
		assert.Equal(t, int64(i), r.Seq)
	}

	assert.Equal(t, 7, table.Stats.RowsRead)
	// 2 header rows, 1 footer row, the blank row and the row without a customer.
	assert.Equal(t, 5, table.Stats.RowsDropped)
	assert.Equal(t, []string{"Grand Total_Total"}, table.Stats.ColumnsDropped)
	assert.Equal(t, 3, table.Stats.CellsExcluded)
}

func TestCleaner_CleanHeaderVariants(t *testing.T) {
	f := setupFixture(t)

	t.Run("combined year and month labels", func(t *testing.T) {
		table, err := f.cleaner.Clean(f.ctx, rows(
			"Customer Group\tStore\tSKU\t\t",
			"\t\t\t2024_March\tApr 2024",
			"King Soopers\tKS #12\tPeru\t3\t4",
			"Grand Total\t\t\t3\t4",
		))
		require.NoError(t, err)
		require.Equal(t, 2, table.Len())
		assert.Equal(t, 3, table.Records[0].Month)
		assert.Equal(t, 4, table.Records[1].Month)
		assert.Equal(t, 2024, table.Records[1].Year)
	})

	t.Run("missing identifier labels are allowed", func(t *testing.T) {
		table, err := f.cleaner.Clean(f.ctx, rows(
			"\t\t\t2024",
			"\t\t\tJan",
			"King Soopers\tKS #12\tPeru\t3",
			"Grand Total\t\t\t3",
		))
		require.NoError(t, err)
		assert.Equal(t, 1, table.Len())
	})

	t.Run("unexpected identifier label", func(t *testing.T) {
		_, err := f.cleaner.Clean(f.ctx, rows(
			"Region\tCustomer\tProduct\t2024",
			"\t\t\tJanuary",
			"West\tKS #12\tPeru\t3",
			"Grand Total\t\t\t3",
		))
		assert.ErrorIs(t, err, domain.ErrSchema)
		assert.Contains(t, err.Error(), "missing expected columns")
	})

	t.Run("descriptive identifier labels", func(t *testing.T) {
		table, err := f.cleaner.Clean(f.ctx, rows(
			"Customer Group Name\tStore #\tProduct Description\t2024",
			"\t\t\tJanuary",
			"King Soopers\tKS #12\tPeru\t3",
			"Grand Total\t\t\t3",
		))
		require.NoError(t, err)
		assert.Equal(t, "Peru", table.Records[0].Product)
	})

	t.Run("swapped identifier columns", func(t *testing.T) {
		_, err := f.cleaner.Clean(f.ctx, rows(
			"Customer\tCustomer Group\tProduct\t2024",
			"\t\t\tJanuary",
			"KS #12\tKing Soopers\tPeru\t3",
			"Grand Total\t\t\t3",
		))
		assert.ErrorIs(t, err, domain.ErrSchema)
		assert.Contains(t, err.Error(), "[customer_group customer]")
	})

	t.Run("no resolvable value columns", func(t *testing.T) {
		_, err := f.cleaner.Clean(f.ctx, rows(
			"Customer Group\tCustomer\tProduct\tGrand Total",
			"\t\t\tTotal",
			"King Soopers\tKS #12\tPeru\t3",
			"Grand Total\t\t\t3",
		))
		assert.ErrorIs(t, err, domain.ErrSchema)
		assert.Contains(t, err.Error(), "[year month sales_value]")
	})

	t.Run("sales total beyond int64", func(t *testing.T) {
		_, err := f.cleaner.Clean(f.ctx, rows(
			"Customer Group\tCustomer\tProduct\t2024\t",
			"\t\t\tJanuary\tFebruary",
			"King Soopers\tKS #12\tPeru\t9223372036854775807\t5",
			"Grand Total\t\t\t0\t0",
		))
		assert.ErrorIs(t, err, domain.ErrSchema)
		assert.Contains(t, err.Error(), "int64 range")
	})
}

func TestCleaner_CleanEmpty(t *testing.T) {
	f := setupFixture(t)

	tests := []struct {
		name string
		raw  []domain.RawRecord
	}{
		{name: "no rows", raw: nil},
		{name: "header only", raw: rows(
			"Customer Group\tCustomer\tProducts\t2024",
			"\t\t\tJanuary",
		)},
		{name: "header and footer", raw: rows(
			"Customer Group\tCustomer\tProducts\t2024",
			"\t\t\tJanuary",
			"Grand Total\t\t\t0",
		)},
		{name: "only excluded cells", raw: rows(
			"Customer Group\tCustomer\tProducts\t2024",
			"\t\t\tJanuary",
			"King Soopers\tKS #12\tPeru\t-1",
			"Grand Total\t\t\t0",
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := f.cleaner.Clean(f.ctx, tt.raw)
			assert.ErrorIs(t, err, domain.ErrSchema)
			assert.Equal(t, 0, table.Len())
		})
	}
}

func TestCleaner_Refine(t *testing.T) {
	f := setupFixture(t)

	t.Run("idempotent on clean output", func(t *testing.T) {
		table, err := f.cleaner.Clean(f.ctx, sampleExport())
		require.NoError(t, err)
		assert.Equal(t, table, f.cleaner.Refine(table))
	})

	t.Run("drops invalid records and renumbers", func(t *testing.T) {
		table := domain.SalesTable{Records: []domain.SalesRecord{
			{Seq: 7, CustomerGroup: "A", Customer: "a", Product: "p", Year: 2024, Month: 13, Value: 1},
			{Seq: 8, CustomerGroup: "A", Customer: "a", Product: "p", Year: 2024, Month: 2, Value: 1},
			{Seq: 9, CustomerGroup: "", Customer: "a", Product: "p", Year: 2024, Month: 3, Value: 1},
		}}

		refined := f.cleaner.Refine(table)
		require.Equal(t, 1, refined.Len())
		assert.Equal(t, int64(0), refined.Records[0].Seq)
		assert.Equal(t, 2, refined.Records[0].Month)
		assert.Equal(t, 2, refined.Stats.CellsExcluded)
		assert.Equal(t, refined, f.cleaner.Refine(refined))
	})
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		cell     string
		expected int64
		ok       bool
	}{
		{cell: "42", expected: 42, ok: true},
		{cell: " 1,200 ", expected: 1200, ok: true},
		{cell: "$15", expected: 15, ok: true},
		{cell: "3.0", expected: 3, ok: true},
		{cell: "3.9", expected: 3, ok: true},
		{cell: "0", expected: 0, ok: true},
		{cell: ""},
		{cell: "n/a"},
		{cell: "-4"},
		{cell: "-4.5"},
		{cell: "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			v, ok := coerceValue(tt.cell)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		year, month  string
		wantY, wantM int
		ok           bool
	}{
		{year: "2024", month: "January", wantY: 2024, wantM: 1, ok: true},
		{year: "2024", month: "sep", wantY: 2024, wantM: 9, ok: true},
		{year: "2024", month: "12", wantY: 2024, wantM: 12, ok: true},
		{year: "", month: "2023_May", wantY: 2023, wantM: 5, ok: true},
		{year: "2022_June", month: "", wantY: 2022, wantM: 6, ok: true},
		{year: "Grand Total", month: "Total"},
		{year: "2024", month: "Total"},
		{year: "1800", month: "January"},
	}

	for _, tt := range tests {
		t.Run(tt.year+"/"+tt.month, func(t *testing.T) {
			y, m, ok := resolvePeriod(tt.year, tt.month)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.wantY, y)
				assert.Equal(t, tt.wantM, m)
			}
		})
	}
}
