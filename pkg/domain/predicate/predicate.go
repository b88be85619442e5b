// Package predicate implements the Predicate entity (spec §3.1, §4.D): the
// one entity that isn't a single-table upsert. A predicate's bytecode is
// shared across every transaction input that carries it, so it lives in
// its own `predicates` table keyed by address, while each occurrence is
// recorded in the `predicate_transactions` join table. Because of this,
// Predicate does not implement sqlstore.Entity — its repository builds the
// two-table join itself, exactly as spec §4.D's "Predicate join" special
// case describes.
//
// Grounded on
// _examples/original_source/crates/domains/src/predicates/queryable.rs.
package predicate

import (
	"context"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore/querybuilder"
	"github.com/fuel-streams/fuel-indexer/pkg/subject"
)

// DefinitionID is this entity's one subject shape.
const DefinitionID = "predicates"

// Item is one predicate-transaction occurrence, joined against the
// predicate's own metadata row.
type Item struct {
	Subject          string
	BlockHeight      int64
	TxID             string
	TxIndex          int32
	InputIndex       int32
	BlobID           string
	PredicateAddress string
	PublishedAt      time.Time
	CreatedAt        time.Time
	Value            []byte
}

// QueryParams is the typed filter set for predicates (spec §4.D, §6.2).
type QueryParams struct {
	BlockHeight      *int64
	TxID             *string
	TxIndex          *int32
	InputIndex       *int32
	BlobID           *string
	PredicateAddress *string
	FromBlock        *int64
	Namespace        string
}

// SubjectOf builds the typed Subject for item (spec §4.B).
func SubjectOf(item Item) subject.Subject {
	return subject.Subject{
		DefinitionID: DefinitionID,
		Fields: map[string]string{
			"block_height": strconv.FormatInt(item.BlockHeight, 10),
			"tx_id":        item.TxID,
			"tx_index":     strconv.FormatInt(int64(item.TxIndex), 10),
			"input_index":  strconv.FormatInt(int64(item.InputIndex), 10),
			"address":      item.PredicateAddress,
		},
	}
}

// Definitions returns this entity's subject catalogue entry.
func Definitions() []subject.Definition {
	return []subject.Definition{
		{
			ID:     DefinitionID,
			Entity: "predicates",
			Segments: []subject.Segment{
				subject.Lit("predicates"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("input_index", "input_index"),
				subject.Fld("address", "predicate_address"),
			},
		},
	}
}

// Repository implements insert/find for the predicate join, independent of
// the generic sqlstore.Repository since its shape is a two-table join.
type Repository struct {
	exec sqlstore.Executor
}

// NewRepository builds a predicate Repository bound to exec.
func NewRepository(exec sqlstore.Executor) *Repository {
	return &Repository{exec: exec}
}

// WithExecutor rebinds onto a different Executor (a transaction).
func (r *Repository) WithExecutor(exec sqlstore.Executor) *Repository {
	return &Repository{exec: exec}
}

// Insert upserts the predicate's metadata row (keyed by predicate_address)
// and records this occurrence in predicate_transactions, keyed by subject.
// Both writes happen against the same executor so a caller batching within
// a transaction gets atomicity for free.
func (r *Repository) Insert(ctx context.Context, item Item) (Item, error) {
	predicateID, err := r.upsertPredicate(ctx, item)
	if err != nil {
		return Item{}, err
	}

	qb := sq.Insert("predicate_transactions").
		Columns("predicate_id", "subject", "block_height", "tx_id", "tx_index", "input_index").
		Values(predicateID, item.Subject, item.BlockHeight, item.TxID, item.TxIndex, item.InputIndex).
		Suffix("ON CONFLICT (subject) DO UPDATE SET predicate_id = EXCLUDED.predicate_id").
		PlaceholderFormat(sq.Dollar)

	stmt, args, err := qb.ToSql()
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.KindDbInsert, err, "building predicate_transactions insert")
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return Item{}, apperrors.Wrap(apperrors.KindDbInsert, err, "inserting predicate_transactions row")
	}
	return item, nil
}

func (r *Repository) upsertPredicate(ctx context.Context, item Item) (int64, error) {
	stmt := `
		INSERT INTO predicates (blob_id, predicate_address, value, published_at, created_at)
		VALUES ($1, $2, $3, now(), $4)
		ON CONFLICT (predicate_address) DO UPDATE SET published_at = now()
		RETURNING id`
	row := r.exec.QueryRow(ctx, stmt, item.BlobID, item.PredicateAddress, item.Value, item.CreatedAt)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, apperrors.Wrap(apperrors.KindDbInsert, err, "upserting predicates row")
	}
	return id, nil
}

// FindMany builds the predicates/predicate_transactions join and returns
// every matching occurrence, paginated on predicate_transactions.block_height.
func (r *Repository) FindMany(ctx context.Context, params QueryParams, pagination sqlstore.PaginationParams) ([]Item, error) {
	qb := sq.Select(
		"pt.subject", "pt.block_height", "pt.tx_id", "pt.tx_index", "pt.input_index",
		"p.blob_id", "p.predicate_address", "p.published_at", "p.created_at", "p.value",
	).PlaceholderFormat(sq.Dollar)
	qb = querybuilder.PredicateJoin(qb)

	where, err := r.buildWhere(params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDbQuery, err, "building filter")
	}
	if where != nil {
		qb = qb.Where(where)
	}
	qb = applyPaginationOnBlockHeight(qb, pagination)

	stmt, args, err := qb.ToSql()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDbQuery, err, "building query")
	}
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDbQuery, err, "querying predicates")
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.Subject, &it.BlockHeight, &it.TxID, &it.TxIndex, &it.InputIndex,
			&it.BlobID, &it.PredicateAddress, &it.PublishedAt, &it.CreatedAt, &it.Value,
		); err != nil {
			return nil, apperrors.Wrap(apperrors.KindDbQuery, err, "scanning predicate row")
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDbQuery, err, "reading rows")
	}
	return out, nil
}

func (r *Repository) buildWhere(p QueryParams) (sq.Sqlizer, error) {
	return querybuilder.And(
		querybuilder.EqInt64("pt.block_height", p.BlockHeight),
		querybuilder.Eq("pt.tx_id", p.TxID),
		querybuilder.EqInt32("pt.tx_index", p.TxIndex),
		querybuilder.EqInt32("pt.input_index", p.InputIndex),
		querybuilder.Eq("p.blob_id", p.BlobID),
		querybuilder.Eq("p.predicate_address", p.PredicateAddress),
		querybuilder.FromBlock(p.FromBlock),
		querybuilder.NamespaceColumn("pt.subject", p.Namespace),
	), nil
}

// CursorOf derives the (block_height) cursor for a predicate occurrence.
func CursorOf(item Item) domain.Cursor { return domain.NewCursor(item.BlockHeight) }

func applyPaginationOnBlockHeight(qb sq.SelectBuilder, p sqlstore.PaginationParams) sq.SelectBuilder {
	switch {
	case p.After != nil:
		qb = qb.Where(sq.Gt{"pt.block_height": p.After.Parts[0]}).OrderBy("pt.block_height ASC")
		if p.First != nil {
			qb = qb.Limit(uint64(*p.First))
		}
		return qb
	case p.Before != nil:
		qb = qb.Where(sq.Lt{"pt.block_height": p.Before.Parts[0]}).OrderBy("pt.block_height DESC")
		if p.Last != nil {
			qb = qb.Limit(uint64(*p.Last))
		}
		return qb
	}
	dir := "ASC"
	if p.OrderBy == sqlstore.Desc {
		dir = "DESC"
	}
	qb = qb.OrderBy("pt.block_height " + dir)
	if p.Limit != nil {
		qb = qb.Limit(uint64(*p.Limit))
	}
	if p.Offset != nil {
		qb = qb.Offset(uint64(*p.Offset))
	}
	return qb
}
