package driver

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// pgPool pgx v4 connection pool
type pgPool struct {
	db *pgxpool.Pool
}

type pgTx struct {
	tx pgx.Tx
}

// pgResult adapt a command tag to sql.Result
type pgResult struct {
	ct pgconn.CommandTag
}

type pgExecer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

var (
	_ ITransactionalDB = &pgPool{}
	_ Tx               = &pgTx{}
	_ sql.Result       = pgResult{}
)

// NewPostgreSQLConn Returns a postgreSQL connection pool
func NewPostgreSQLConn(dsn string, cfg *DBConfig) (ITransactionalDB, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConn > 0 {
		poolConfig.MaxConns = cfg.MaxConn
	}
	conn, err := pgxpool.ConnectConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	return &pgPool{conn}, nil
}

// LastInsertId postgres reports generated keys through RETURNING only
func (pr pgResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (pr pgResult) RowsAffected() (int64, error) {
	return pr.ct.RowsAffected(), nil
}

func (pp *pgPool) BeginTx(ctx context.Context, opts *TxOptions) (Tx, error) {
	startTime := time.Now()
	tx, err := pp.db.BeginTx(ctx, pgTxOptions(opts))
	logStatement(ctx, "BeginTx", "", startTime, nil, err)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx}, nil
}

func pgTxOptions(opts *TxOptions) pgx.TxOptions {
	var po pgx.TxOptions
	if opts == nil {
		return po
	}
	if opts.Isolation != sql.LevelDefault {
		// "Read Committed" -> pgx.ReadCommitted
		po.IsoLevel = pgx.TxIsoLevel(strings.ToLower(opts.Isolation.String()))
	}
	if opts.ReadOnly {
		po.AccessMode = pgx.ReadOnly
	}
	return po
}

func (pp *pgPool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return pgExec(ctx, pp.db, query, args)
}

// Ping acquire a connection and ping the server
func (pp *pgPool) Ping(ctx context.Context) error {
	conn, err := pp.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return conn.Conn().Ping(ctx)
}

// Close close the whole pool
func (pp *pgPool) Close(ctx context.Context) error {
	pp.db.Close()
	return nil
}

func (pt *pgTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return pgExec(ctx, pt.tx, query, args)
}

func (pt *pgTx) Commit(ctx context.Context) error {
	startTime := time.Now()
	err := pt.tx.Commit(ctx)
	logStatement(ctx, "Commit", "", startTime, nil, err)
	return err
}

func (pt *pgTx) Rollback(ctx context.Context) error {
	startTime := time.Now()
	err := pt.tx.Rollback(ctx)
	logStatement(ctx, "Rollback", "", startTime, nil, err)
	return err
}

func pgExec(ctx context.Context, e pgExecer, query string, args []interface{}) (sql.Result, error) {
	startTime := time.Now()
	query = strings.TrimSpace(SpacePattern.ReplaceAllString(query, " "))
	ct, err := e.Exec(ctx, query, args...)
	logStatement(ctx, "Exec", query, startTime, args, err)
	return pgResult{ct}, err
}
