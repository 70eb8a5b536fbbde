package driver

import (
	"context"
	"database/sql"
	"strings"
	"time"

	// mysql driver
	_ "github.com/go-sql-driver/mysql"
)

// mysqlPool database/sql pool opened with the mysql driver
type mysqlPool struct {
	db *sql.DB
}

type mysqlTx struct {
	tx *sql.Tx
}

var (
	_ ITransactionalDB = &mysqlPool{}
	_ Tx               = &mysqlTx{}
)

// NewMySQLConn Returns a MySQL connection pool, statements may use $n placeholders
func NewMySQLConn(dsn string, cfg *DBConfig) (ITransactionalDB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConn > 0 {
		conn.SetMaxOpenConns(int(cfg.MaxConn))
	}
	return &mysqlPool{conn}, nil
}

func (mp *mysqlPool) BeginTx(ctx context.Context, opts *TxOptions) (Tx, error) {
	startTime := time.Now()
	var sqlOpts *sql.TxOptions
	if opts != nil {
		sqlOpts = &sql.TxOptions{Isolation: opts.Isolation, ReadOnly: opts.ReadOnly}
	}
	tx, err := mp.db.BeginTx(ctx, sqlOpts)
	logStatement(ctx, "BeginTx", "", startTime, nil, err)
	if err != nil {
		return nil, err
	}
	return &mysqlTx{tx}, nil
}

func (mp *mysqlPool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return mysqlExec(ctx, mp.db, query, args)
}

func (mp *mysqlPool) Ping(ctx context.Context) error {
	return mp.db.PingContext(ctx)
}

func (mp *mysqlPool) Close(ctx context.Context) error {
	return mp.db.Close()
}

func (mt *mysqlTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return mysqlExec(ctx, mt.tx, query, args)
}

func (mt *mysqlTx) Commit(ctx context.Context) error {
	startTime := time.Now()
	err := mt.tx.Commit()
	logStatement(ctx, "Commit", "", startTime, nil, err)
	return err
}

func (mt *mysqlTx) Rollback(ctx context.Context) error {
	startTime := time.Now()
	err := mt.tx.Rollback()
	logStatement(ctx, "Rollback", "", startTime, nil, err)
	return err
}

func mysqlExec(ctx context.Context, e Executor, query string, args []interface{}) (sql.Result, error) {
	startTime := time.Now()
	query = mysqlAdapter(query)
	res, err := e.ExecContext(ctx, query, args...)
	logStatement(ctx, "Exec", query, startTime, args, err)
	return res, err
}

// mysqlAdapter rewrite a postgres flavoured statement for mysql
func mysqlAdapter(query string) string {
	query = strings.Replace(query, "\"", "`", -1)
	query = DollarPlaceholderPattern.ReplaceAllString(query, "?")
	query = strings.TrimSpace(SpacePattern.ReplaceAllString(query, " "))
	return query
}
