package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"strings"

	"github.com/benprew/deptadmin"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// DB represents the database connection.
type DB struct {
	db  *sqlx.DB
	DSN string

	// When set, every statement run through a transaction is logged.
	Logger *log.Logger
}

// NewDB returns a new instance of DB associated with the given datasource name.
func NewDB(dsn string) *DB {
	return &DB{DSN: dsn}
}

// Open opens the database connection and applies the schema.
func (db *DB) Open() (err error) {
	if db.DSN == "" {
		return fmt.Errorf("dsn required")
	}

	if db.db, err = sqlx.Connect("sqlite3", db.DSN); err != nil {
		return err
	}

	// An in-memory database lives and dies with its connection.
	if strings.Contains(db.DSN, ":memory:") {
		db.db.SetMaxOpenConns(1)
	}

	if _, err := db.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// Tx wraps sqlx.Tx so statements can be routed through the query logger.
type Tx struct {
	*sqlx.Tx
	ext sqlx.ExtContext
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}

	var ext sqlx.ExtContext = tx
	if db.Logger != nil {
		ext = &QueryLogger{Queryer: tx, Logger: db.Logger}
	}
	return &Tx{Tx: tx, ext: ext}, nil
}

// FormatLimitOffset returns a SQL string for a given limit & offset.
// Clauses are only added if limit and/or offset are greater than zero.
func FormatLimitOffset(limit, offset int) string {
	if limit > 0 && offset > 0 {
		return fmt.Sprintf(`LIMIT %d OFFSET %d`, limit, offset)
	} else if limit > 0 {
		return fmt.Sprintf(`LIMIT %d`, limit)
	} else if offset > 0 {
		// sqlite only accepts OFFSET after a LIMIT
		return fmt.Sprintf(`LIMIT -1 OFFSET %d`, offset)
	}
	return ""
}

// FormatError tries to format a sqlite error as a deptadmin error.
// Otherwise returns the original error.
func FormatError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case strings.Contains(err.Error(), "UNIQUE constraint failed: departments.code"):
		return deptadmin.Errorf(deptadmin.ECONFLICT, "department code already exists")
	case strings.Contains(err.Error(), "UNIQUE constraint"):
		return deptadmin.Errorf(deptadmin.ECONFLICT, err.Error())
	default:
		return err
	}
}
