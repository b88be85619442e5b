// Package sqlstore implements the generic repository of spec §4.C: upsert,
// find_one, and find_many with cursor/limit/offset pagination, built over
// a per-entity Entity implementation. Go's type parameters stand in for
// the "associated types" spec §9 asks for — each entity package supplies a
// concrete Entity[Item, QueryParams] rather than the repository collapsing
// into a stringly-typed layer.
//
// Grounded on the teacher's pkg/sqlstore.SQLStore interface-segregation
// shape (one store composing per-family interfaces, sharing a pool) and
// pkg/sqlstore/impl/pgx_store.go's pgxpool construction.
package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// Scannable is satisfied by both pgx.Row and pgx.Rows, letting ScanRow
// implementations work for both find_one and find_many.
type Scannable interface {
	Scan(dest ...interface{}) error
}

// Executor is satisfied by a pgxpool.Pool and by a pgx.Tx, letting every
// repository method run either against the pool directly or inside a
// caller-supplied transaction (spec §4.C insert_with_transaction).
type Executor interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (int64, error)
	Query(ctx context.Context, sql string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) Scannable
}

// Rows abstracts pgx.Rows enough for Repository.FindMany to range over.
type Rows interface {
	Scannable
	Next() bool
	Close()
	Err() error
}

// OrderBy selects ascending or descending order for a non-cursor query.
type OrderBy int

// The two supported directions.
const (
	Asc OrderBy = iota
	Desc
)

// PaginationParams carries the cursor/limit/offset controls shared by
// every entity's find_many (spec §4.C "Pagination semantics").
type PaginationParams struct {
	After   *domain.Cursor
	Before  *domain.Cursor
	First   *int
	Last    *int
	Limit   *int
	Offset  *int
	OrderBy OrderBy
}

// CursorActive reports whether keyset pagination is in effect, in which
// case OrderBy is ignored (spec §4.C "Ordering contract" exception).
func (p PaginationParams) CursorActive() bool {
	return p.After != nil || p.Before != nil
}

// Entity is the per-row-type contract a concrete domain package (block,
// transaction, ...) implements to plug into the generic Repository.
type Entity[Item any, Params any] interface {
	// TableName is the backing SQL table.
	TableName() string
	// UniqueColumn is the upsert conflict target: "subject" for every
	// entity except Block, which uses "block_height" (spec §3.1).
	UniqueColumn() string
	// InsertColumns lists every column written by an insert, in the same
	// order as InsertValues.
	InsertColumns() []string
	// InsertValues extracts positional values from item for InsertColumns.
	InsertValues(item Item) []interface{}
	// ScanColumns lists every column read by a select, in the same order
	// ScanRow expects to Scan them.
	ScanColumns() []string
	// ScanRow reads one row into an Item.
	ScanRow(row Scannable) (Item, error)
	// CursorColumns lists the SQL columns making up the cursor tuple, in
	// tuple order (spec §3.1's per-entity cursor tuple).
	CursorColumns() []string
	// CursorOf derives an item's cursor.
	CursorOf(item Item) domain.Cursor
	// BuildWhere translates typed query params into a SQL condition
	// (spec §4.D); returns nil, nil for "no filter".
	BuildWhere(params Params) (sq.Sqlizer, error)
}

// NotFoundError is returned by FindOne when no row matches.
func NotFoundError(entity string) error {
	return apperrors.New(apperrors.KindNotFound, entity+": no matching row")
}
