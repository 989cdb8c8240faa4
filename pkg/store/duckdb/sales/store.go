package sales

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
)

// Dimension is a canonical column (or derived key) the store can group by.
type Dimension string

const (
	DimCustomerGroup Dimension = "customer_group"
	DimCustomer      Dimension = "customer"
	DimProduct       Dimension = "product"
	DimYear          Dimension = "year"
	DimMonth         Dimension = "month"
	DimPeriod        Dimension = "period" // YYYY-MM
)

type dimensionSQL struct {
	key   string
	order string // empty for categorical dimensions: total desc, then first appearance
}

var dimensions = map[Dimension]dimensionSQL{
	DimCustomerGroup: {key: "customer_group"},
	DimCustomer:      {key: "customer"},
	DimProduct:       {key: "product"},
	DimYear:          {key: "CAST(year AS VARCHAR)", order: "MIN(year)"},
	DimMonth:         {key: "CAST(month AS VARCHAR)", order: "MIN(month)"},
	DimPeriod: {
		key:   "CAST(year AS VARCHAR) || '-' || lpad(CAST(month AS VARCHAR), 2, '0')",
		order: "MIN(year), MIN(month)",
	},
}

const categoricalOrder = "total DESC, first_seen ASC"

// Filter narrows a query. Zero values mean no restriction.
type Filter struct {
	Year          int
	Months        []int
	CustomerGroup string
}

func (f Filter) where() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.Year != 0 {
		clauses = append(clauses, "year = ?")
		args = append(args, f.Year)
	}
	if len(f.Months) > 0 {
		placeholders := make([]string, 0, len(f.Months))
		for _, m := range f.Months {
			placeholders = append(placeholders, "?")
			args = append(args, m)
		}
		clauses = append(clauses, fmt.Sprintf("month IN (%s)", strings.Join(placeholders, ",")))
	}
	if f.CustomerGroup != "" {
		clauses = append(clauses, "customer_group = ?")
		args = append(args, f.CustomerGroup)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Store holds the cleaned sales table for one run and answers grouped-sum queries.
type Store interface {
	Add(ctx context.Context, rows []store.SalesRow) error
	Totals(ctx context.Context, dim Dimension, filter Filter) ([]store.Total, error)
	Breakdown(ctx context.Context, dims []Dimension, filter Filter) ([]store.Cell, error)
	PeriodTotal(ctx context.Context, filter Filter) (int64, error)
	Stats(ctx context.Context) (*store.SalesStats, error)
}

type salesStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &salesStore{
		db: db,
	}, nil
}

func (s *salesStore) Add(ctx context.Context, rows []store.SalesRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT INTO sales_records (
			seq, customer_group, customer, product, year, month, sales_value
		) VALUES (
			?, ?, ?, ?, ?, ?, ?
		)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}

	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err = stmt.ExecContext(ctx,
			row.Seq,
			row.CustomerGroup,
			row.Customer,
			row.Product,
			row.Year,
			row.Month,
			row.SalesValue,
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", row.Seq, err)
		}
	}

	return nil
}

func (s *salesStore) Totals(ctx context.Context, dim Dimension, filter Filter) ([]store.Total, error) {
	d, ok := dimensions[dim]
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}

	order := categoricalOrder
	if d.order != "" {
		order = d.order
	}

	where, args := filter.where()
	query := fmt.Sprintf(`
		SELECT %s AS key, CAST(SUM(sales_value) AS BIGINT) AS total, MIN(seq) AS first_seen
		FROM sales_records%s
		GROUP BY 1
		ORDER BY %s
	`, d.key, where, order)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query totals by %s: %w", dim, err)
	}
	defer rows.Close()

	totals := make([]store.Total, 0)
	for rows.Next() {
		var t store.Total
		if err := rows.Scan(&t.Key, &t.Value, &t.FirstSeen); err != nil {
			return nil, fmt.Errorf("scan totals by %s: %w", dim, err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (s *salesStore) Breakdown(ctx context.Context, dims []Dimension, filter Filter) ([]store.Cell, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("breakdown requires at least one dimension")
	}

	keys := make([]string, 0, len(dims))
	groups := make([]string, 0, len(dims))
	for i, dim := range dims {
		d, ok := dimensions[dim]
		if !ok {
			return nil, fmt.Errorf("unknown dimension %q", dim)
		}
		keys = append(keys, fmt.Sprintf("%s AS k%d", d.key, i))
		groups = append(groups, fmt.Sprintf("%d", i+1))
	}

	where, args := filter.where()
	query := fmt.Sprintf(`
		SELECT %s, CAST(SUM(sales_value) AS BIGINT) AS total, MIN(seq) AS first_seen
		FROM sales_records%s
		GROUP BY %s
		ORDER BY %s
	`, strings.Join(keys, ", "), where, strings.Join(groups, ", "), categoricalOrder)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query breakdown: %w", err)
	}
	defer rows.Close()

	cells := make([]store.Cell, 0)
	for rows.Next() {
		cell := store.Cell{Keys: make([]string, len(dims))}
		dest := make([]interface{}, 0, len(dims)+2)
		for i := range cell.Keys {
			dest = append(dest, &cell.Keys[i])
		}
		dest = append(dest, &cell.Value, &cell.FirstSeen)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan breakdown: %w", err)
		}
		cells = append(cells, cell)
	}
	return cells, rows.Err()
}

func (s *salesStore) PeriodTotal(ctx context.Context, filter Filter) (int64, error) {
	where, args := filter.where()
	query := `SELECT CAST(COALESCE(SUM(sales_value), 0) AS BIGINT) FROM sales_records` + where

	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("query period total: %w", err)
	}
	return total, nil
}

func (s *salesStore) Stats(ctx context.Context) (*store.SalesStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(MIN(year), 0), COALESCE(MAX(year), 0),
		       CAST(COALESCE(SUM(sales_value), 0) AS BIGINT)
		FROM sales_records`

	var stats store.SalesStats
	if err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.RecordsCount, &stats.FirstYear, &stats.LastYear, &stats.TotalValue,
	); err != nil {
		return nil, fmt.Errorf("get sales stats: %w", err)
	}
	return &stats, nil
}
