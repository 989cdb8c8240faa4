package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const SalesTableSchema = `
	CREATE TABLE IF NOT EXISTS sales_records (
		seq BIGINT NOT NULL,
		customer_group VARCHAR NOT NULL,
		customer VARCHAR NOT NULL,
		product VARCHAR NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		sales_value BIGINT NOT NULL CHECK (sales_value >= 0),
		PRIMARY KEY (seq)
	);
`

var bootQueries = []string{
	SalesTableSchema,
}

// InMemory is the DbPath for a throwaway database that lives as long as the *sql.DB.
const InMemory = ":memory:"

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	if settings.DbPath == "" {
		settings.DbPath = InMemory
	}
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=1", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	// single connection; stores must use the ctx transaction while one is open.
	db.SetMaxOpenConns(1)
	return db, nil
}
