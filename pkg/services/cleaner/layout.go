package cleaner

import (
	"fmt"
)

// Layout is the fixed-offset contract of the "Sales and Credits by Store" export.
// Rows and columns are zero-based.
type Layout struct {
	HeaderRows       int `mapstructure:"header_rows" validate:"gte=0"`
	FooterRows       int `mapstructure:"footer_rows" validate:"gte=0"`
	YearRow          int `mapstructure:"year_row" validate:"gte=0"`
	MonthRow         int `mapstructure:"month_row" validate:"gte=0"`
	GroupColumn      int `mapstructure:"group_column" validate:"gte=0"`
	CustomerColumn   int `mapstructure:"customer_column" validate:"gte=0"`
	ProductColumn    int `mapstructure:"product_column" validate:"gte=0"`
	FirstValueColumn int `mapstructure:"first_value_column" validate:"gte=0"`
}

func DefaultLayout() Layout {
	return Layout{
		HeaderRows:       2,
		FooterRows:       1,
		YearRow:          0,
		MonthRow:         1,
		GroupColumn:      0,
		CustomerColumn:   1,
		ProductColumn:    2,
		FirstValueColumn: 3,
	}
}

func (l Layout) check() error {
	if l.HeaderRows == 0 {
		return fmt.Errorf("layout needs at least one header row for year and month labels")
	}
	if l.YearRow >= l.HeaderRows || l.MonthRow >= l.HeaderRows {
		return fmt.Errorf("year row %d and month row %d must be within the %d header rows", l.YearRow, l.MonthRow, l.HeaderRows)
	}
	ids := []int{l.GroupColumn, l.CustomerColumn, l.ProductColumn}
	seen := make(map[int]bool, len(ids))
	for _, c := range ids {
		if seen[c] {
			return fmt.Errorf("identifier column %d is mapped twice", c)
		}
		seen[c] = true
		if c >= l.FirstValueColumn {
			return fmt.Errorf("identifier column %d must precede the first value column %d", c, l.FirstValueColumn)
		}
	}
	return nil
}
