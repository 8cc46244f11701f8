package sqlite

import (
	"context"
	"database/sql"
	"log"

	"github.com/jmoiron/sqlx"
)

// QueryLogger logs each statement before handing it to the wrapped queryer.
type QueryLogger struct {
	Queryer sqlx.ExtContext
	Logger  *log.Logger
}

var _ sqlx.ExtContext = (*QueryLogger)(nil)

func (p *QueryLogger) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	p.Logger.Print("SQL===> ", query, args)
	return p.Queryer.QueryContext(ctx, query, args...)
}

func (p *QueryLogger) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	p.Logger.Print("SQL===> ", query, args)
	return p.Queryer.QueryxContext(ctx, query, args...)
}

func (p *QueryLogger) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	p.Logger.Print("SQL===> ", query, args)
	return p.Queryer.QueryRowxContext(ctx, query, args...)
}

func (p *QueryLogger) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	p.Logger.Print("SQL===> ", query, args)
	return p.Queryer.ExecContext(ctx, query, args...)
}

func (p *QueryLogger) DriverName() string {
	return p.Queryer.DriverName()
}

func (p *QueryLogger) Rebind(s string) string {
	return p.Queryer.Rebind(s)
}

func (p *QueryLogger) BindNamed(s string, i interface{}) (string, []interface{}, error) {
	return p.Queryer.BindNamed(s, i)
}
