package wsserver

import (
	"context"

	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/block"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/catalogue"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/input"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/output"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/predicate"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/receipt"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/transaction"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/utxo"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
)

// record is one historical row handed back by a stream's fetch, reduced to
// exactly what the live-subscription engine needs to emit a response frame
// and advance its dedup cursor.
type record struct {
	subject string
	cursor  domain.Cursor
	value   []byte
}

// stream is the historical-replay half of one entity family: a uniform
// "give me up to limit rows after this cursor, optionally floored at a
// starting height" query, independent of the entity's concrete Item/Params
// types. pkg/wsserver needs this because one WS connection can subscribe
// across any entity, decided only at runtime by which wildcard the client
// sends (spec §4.G step 3 "derive the entity").
type stream interface {
	fetch(ctx context.Context, namespace string, fromHeight int64, after *domain.Cursor, limit int) ([]record, error)
}

type streamFunc func(ctx context.Context, namespace string, fromHeight int64, after *domain.Cursor, limit int) ([]record, error)

func (f streamFunc) fetch(ctx context.Context, namespace string, fromHeight int64, after *domain.Cursor, limit int) ([]record, error) {
	return f(ctx, namespace, fromHeight, after, limit)
}

// buildStream adapts one entity's generic-repository FindMany into a
// stream, given how to build that entity's QueryParams and how to read a
// subject/cursor/value out of its Item. find is a bound method value
// (e.g. repos.Blocks.FindMany), so this works identically for the
// sqlstore.Repository-backed entities and for predicate.Repository, which
// has the same method shape without implementing sqlstore.Entity.
func buildStream[Item any, Params any](
	find func(ctx context.Context, params Params, pagination sqlstore.PaginationParams) ([]Item, error),
	newParams func(namespace string, fromHeight *int64) Params,
	cursorOf func(Item) domain.Cursor,
	subjectOf func(Item) string,
	valueOf func(Item) []byte,
) stream {
	return streamFunc(func(ctx context.Context, namespace string, fromHeight int64, after *domain.Cursor, limit int) ([]record, error) {
		params := newParams(namespace, &fromHeight)
		items, err := find(ctx, params, sqlstore.PaginationParams{
			After:   after,
			First:   &limit,
			OrderBy: sqlstore.Asc,
		})
		if err != nil {
			return nil, err
		}
		out := make([]record, len(items))
		for i, it := range items {
			out[i] = record{subject: subjectOf(it), cursor: cursorOf(it), value: valueOf(it)}
		}
		return out, nil
	})
}

// buildStreams wires one stream per entity family named in the subject
// catalogue (spec §3.1's entity list), keyed the same way
// subject.Definition.Entity is: "blocks", "transactions", "inputs",
// "outputs", "receipts", "utxos", "predicates".
func buildStreams(repos *catalogue.Repositories) map[string]stream {
	return map[string]stream{
		"blocks": buildStream(
			repos.Blocks.FindMany,
			func(ns string, fromHeight *int64) block.QueryParams {
				return block.QueryParams{Namespace: ns, FromBlock: fromHeight}
			},
			block.Entity{}.CursorOf,
			func(i block.Item) string { return i.Subject },
			func(i block.Item) []byte { return i.Value },
		),
		"transactions": buildStream(
			repos.Transactions.FindMany,
			func(ns string, fromHeight *int64) transaction.QueryParams {
				return transaction.QueryParams{Namespace: ns, FromBlock: fromHeight}
			},
			transaction.Entity{}.CursorOf,
			func(i transaction.Item) string { return i.Subject },
			func(i transaction.Item) []byte { return i.Value },
		),
		"inputs": buildStream(
			repos.Inputs.FindMany,
			func(ns string, fromHeight *int64) input.QueryParams {
				return input.QueryParams{Namespace: ns, FromBlock: fromHeight}
			},
			input.Entity{}.CursorOf,
			func(i input.Item) string { return i.Subject },
			func(i input.Item) []byte { return i.Value },
		),
		"outputs": buildStream(
			repos.Outputs.FindMany,
			func(ns string, fromHeight *int64) output.QueryParams {
				return output.QueryParams{Namespace: ns, FromBlock: fromHeight}
			},
			output.Entity{}.CursorOf,
			func(i output.Item) string { return i.Subject },
			func(i output.Item) []byte { return i.Value },
		),
		"receipts": buildStream(
			repos.Receipts.FindMany,
			func(ns string, fromHeight *int64) receipt.QueryParams {
				return receipt.QueryParams{Namespace: ns, FromBlock: fromHeight}
			},
			receipt.Entity{}.CursorOf,
			func(i receipt.Item) string { return i.Subject },
			func(i receipt.Item) []byte { return i.Value },
		),
		"utxos": buildStream(
			repos.UTXOs.FindMany,
			func(ns string, fromHeight *int64) utxo.QueryParams {
				return utxo.QueryParams{Namespace: ns, FromBlock: fromHeight}
			},
			utxo.Entity{}.CursorOf,
			func(i utxo.Item) string { return i.Subject },
			func(i utxo.Item) []byte { return i.Value },
		),
		"predicates": buildStream(
			repos.Predicates.FindMany,
			func(ns string, fromHeight *int64) predicate.QueryParams {
				return predicate.QueryParams{Namespace: ns, FromBlock: fromHeight}
			},
			predicate.CursorOf,
			func(i predicate.Item) string { return i.Subject },
			func(i predicate.Item) []byte { return i.Value },
		),
	}
}
