// Package postgres wires the generic sqlstore.Entity/Repository machinery
// onto a real pgxpool connection. Grounded on the teacher's
// pkg/sqlstore/impl/pgx_store.go pool-construction shape; swaps the
// teacher's sqlite3-backed SystemStore/UserStore split for one pool serving
// every entity repository, since this system has no per-tenant SQL tables
// to isolate.
package postgres

import (
	"context"
	"fmt"

	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store owns the connection pool and satisfies sqlstore.Executor directly,
// so catalogue.NewRepositories(store) wires every repository in one call.
type Store struct {
	Pool *pgxpool.Pool
}

// New connects to postgresURI and runs pending migrations before returning,
// matching the teacher's New(...) doing migration-then-ready-to-use.
func New(ctx context.Context, postgresURI string) (*Store, error) {
	if err := Migrate(postgresURI); err != nil {
		return nil, fmt.Errorf("migrating database: %s", err)
	}
	pool, err := pgxpool.Connect(ctx, postgresURI)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %s", err)
	}
	return &Store{Pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.Pool.Close() }

// Exec implements sqlstore.Executor.
func (s *Store) Exec(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	tag, err := s.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Query implements sqlstore.Executor.
func (s *Store) Query(ctx context.Context, sql string, args ...interface{}) (sqlstore.Rows, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

// QueryRow implements sqlstore.Executor.
func (s *Store) QueryRow(ctx context.Context, sql string, args ...interface{}) sqlstore.Scannable {
	return s.Pool.QueryRow(ctx, sql, args...)
}

// BeginTx starts a transaction whose Exec/Query/QueryRow satisfy
// sqlstore.Executor, for the ingest pipeline's batched block insert (spec
// §4.C insert_with_transaction, §4.F "single DB transaction").
func (s *Store) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Tx{}, err
	}
	return Tx{tx: tx}, nil
}

// Tx wraps a pgx.Tx so it satisfies sqlstore.Executor; Commit/Rollback stay
// explicit on the caller, matching the teacher's transactor package's
// "caller drives the transaction lifecycle" shape.
type Tx struct {
	tx pgx.Tx
}

func (t Tx) Exec(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t Tx) Query(ctx context.Context, sql string, args ...interface{}) (sqlstore.Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

func (t Tx) QueryRow(ctx context.Context, sql string, args ...interface{}) sqlstore.Scannable {
	return t.tx.QueryRow(ctx, sql, args...)
}

func (t Tx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t Tx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// pgxRows adapts pgx.Rows to sqlstore.Rows (identical method set; named so
// the dependency on jackc/pgx/v4 stays isolated to this package).
type pgxRows struct {
	pgx.Rows
}

var (
	_ sqlstore.Executor = (*Store)(nil)
	_ sqlstore.Executor = Tx{}
	_ sqlstore.Rows     = pgxRows{}
)
