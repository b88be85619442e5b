package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/jackc/pgx/v4"
)

// Repository is the generic implementation of spec §4.C over a concrete
// Entity. One instance is constructed per entity (see
// catalogue.NewRepositories) at startup and held as an immutable
// reference (spec §9 "Global state").
type Repository[Item any, Params any] struct {
	exec   Executor
	entity Entity[Item, Params]
}

// New constructs a Repository bound to exec (typically a pool; see
// WithExecutor to rebind onto a transaction).
func New[Item any, Params any](exec Executor, entity Entity[Item, Params]) *Repository[Item, Params] {
	return &Repository[Item, Params]{exec: exec, entity: entity}
}

// WithExecutor returns a Repository bound to a different Executor (a
// transaction) while reusing the same Entity mapping. Used for
// insert_with_transaction.
func (r *Repository[Item, Params]) WithExecutor(exec Executor) *Repository[Item, Params] {
	return &Repository[Item, Params]{exec: exec, entity: r.entity}
}

// Insert performs the upsert described in spec §4.C: INSERT ... ON
// CONFLICT (unique_key) DO UPDATE SET <every non-key column> = EXCLUDED.*,
// published_at always refreshed to wall-clock time, RETURNING *.
func (r *Repository[Item, Params]) Insert(ctx context.Context, item Item) (Item, error) {
	return r.insert(ctx, r.exec, item)
}

// InsertWithTransaction is Insert run against an explicitly supplied
// transaction executor, for callers batching several inserts atomically
// (spec §4.C, §4.F "chunks of 50 within a single DB transaction").
func (r *Repository[Item, Params]) InsertWithTransaction(ctx context.Context, tx Executor, item Item) (Item, error) {
	return r.insert(ctx, tx, item)
}

func (r *Repository[Item, Params]) insert(ctx context.Context, exec Executor, item Item) (Item, error) {
	var zero Item

	cols := r.entity.InsertColumns()
	vals := r.entity.InsertValues(item)
	uniqueCol := r.entity.UniqueColumn()

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var updateSet []string
	for _, c := range cols {
		if c == uniqueCol || c == "created_at" || c == "published_at" {
			continue
		}
		updateSet = append(updateSet, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	updateSet = append(updateSet, fmt.Sprintf("published_at = %s", nowLiteral))

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING %s",
		r.entity.TableName(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		uniqueCol,
		strings.Join(updateSet, ", "),
		strings.Join(r.entity.ScanColumns(), ", "),
	)

	row := exec.QueryRow(ctx, stmt, vals...)
	out, err := r.entity.ScanRow(row)
	if err != nil {
		return zero, apperrors.Wrap(apperrors.KindDbInsert, err, "upserting "+r.entity.TableName())
	}
	return out, nil
}

// nowLiteral is a plain SQL expression (not a bound parameter) so the
// upsert's RETURNING value reflects the same instant used for the WHERE
// clause would, were there one; passing time.Now() as a parameter from Go
// would require a dedicated placeholder slot that shifts with column
// count, which this avoids.
const nowLiteral = "now()"

// FindOne builds the query, executes it, and returns the single matching
// row; NotFound if empty (spec §4.C).
func (r *Repository[Item, Params]) FindOne(ctx context.Context, params Params) (Item, error) {
	var zero Item

	qb, err := r.selectBuilder(params, PaginationParams{})
	if err != nil {
		return zero, err
	}
	qb = qb.Limit(1)

	stmt, args, err := qb.ToSql()
	if err != nil {
		return zero, apperrors.Wrap(apperrors.KindDbQuery, err, "building query")
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	item, err := r.entity.ScanRow(row)
	if err != nil {
		if isNoRows(err) {
			return zero, NotFoundError(r.entity.TableName())
		}
		return zero, apperrors.Wrap(apperrors.KindDbQuery, err, "querying "+r.entity.TableName())
	}
	return item, nil
}

// FindMany builds the query with pagination applied and returns every
// matching row, ordered per spec §4.C's ordering contract.
func (r *Repository[Item, Params]) FindMany(ctx context.Context, params Params, pagination PaginationParams) ([]Item, error) {
	qb, err := r.selectBuilder(params, pagination)
	if err != nil {
		return nil, err
	}

	stmt, args, err := qb.ToSql()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDbQuery, err, "building query")
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDbQuery, err, "querying "+r.entity.TableName())
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		item, err := r.entity.ScanRow(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindDbQuery, err, "scanning "+r.entity.TableName())
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDbQuery, err, "reading rows")
	}
	return out, nil
}

func (r *Repository[Item, Params]) selectBuilder(params Params, pagination PaginationParams) (sq.SelectBuilder, error) {
	qb := sq.Select(r.entity.ScanColumns()...).
		From(r.entity.TableName()).
		PlaceholderFormat(sq.Dollar)

	where, err := r.entity.BuildWhere(params)
	if err != nil {
		return qb, apperrors.Wrap(apperrors.KindDbQuery, err, "building filter")
	}
	if where != nil {
		qb = qb.Where(where)
	}

	return applyPagination(qb, r.entity.CursorColumns(), pagination), nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
