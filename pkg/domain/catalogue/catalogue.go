// Package catalogue wires every entity package into one subject registry
// and one set of repositories, so cmd/api's wiring and pkg/ingest's
// dispatch logic have a single place to ask "what entities exist" rather
// than enumerating them by hand at every call site.
package catalogue

import (
	"github.com/fuel-streams/fuel-indexer/pkg/domain/block"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/input"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/output"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/predicate"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/receipt"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/transaction"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/utxo"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
	"github.com/fuel-streams/fuel-indexer/pkg/subject"
)

// AllDefinitions collects the subject catalogue of every known entity, in
// the order subject.NewRegistry expects (it re-sorts by specificity, so
// declaration order here only matters for readability).
func AllDefinitions() []subject.Definition {
	var defs []subject.Definition
	defs = append(defs, block.Definitions()...)
	defs = append(defs, transaction.Definitions()...)
	defs = append(defs, input.Definitions()...)
	defs = append(defs, output.Definitions()...)
	defs = append(defs, receipt.Definitions()...)
	defs = append(defs, utxo.Definitions()...)
	defs = append(defs, predicate.Definitions()...)
	return defs
}

// NewRegistry builds the subject registry for the whole catalogue.
func NewRegistry() *subject.Registry {
	return subject.NewRegistry(AllDefinitions()...)
}

// Repositories bundles one sqlstore.Repository per single-table entity,
// plus the predicate package's own join-aware Repository (spec §4.D's
// special case), all bound to the same Executor.
type Repositories struct {
	Blocks       *sqlstore.Repository[block.Item, block.QueryParams]
	Transactions *sqlstore.Repository[transaction.Item, transaction.QueryParams]
	Inputs       *sqlstore.Repository[input.Item, input.QueryParams]
	Outputs      *sqlstore.Repository[output.Item, output.QueryParams]
	Receipts     *sqlstore.Repository[receipt.Item, receipt.QueryParams]
	UTXOs        *sqlstore.Repository[utxo.Item, utxo.QueryParams]
	Predicates   *predicate.Repository
}

// NewRepositories constructs every repository against a shared Executor
// (typically a pgxpool.Pool; swapped per-call for a transaction by ingest's
// batched insert path).
func NewRepositories(exec sqlstore.Executor) *Repositories {
	return &Repositories{
		Blocks:       sqlstore.New[block.Item, block.QueryParams](exec, block.Entity{}),
		Transactions: sqlstore.New[transaction.Item, transaction.QueryParams](exec, transaction.Entity{}),
		Inputs:       sqlstore.New[input.Item, input.QueryParams](exec, input.Entity{}),
		Outputs:      sqlstore.New[output.Item, output.QueryParams](exec, output.Entity{}),
		Receipts:     sqlstore.New[receipt.Item, receipt.QueryParams](exec, receipt.Entity{}),
		UTXOs:        sqlstore.New[utxo.Item, utxo.QueryParams](exec, utxo.Entity{}),
		Predicates:   predicate.NewRepository(exec),
	}
}

// WithExecutor rebinds every repository onto a different Executor, such as
// an open transaction, so writes through the returned set commit or roll
// back together. The ingest pipeline does not call it; it rebinds each
// repository it writes through on its own, per 50-tx batch.
func (r *Repositories) WithExecutor(exec sqlstore.Executor) *Repositories {
	return &Repositories{
		Blocks:       r.Blocks.WithExecutor(exec),
		Transactions: r.Transactions.WithExecutor(exec),
		Inputs:       r.Inputs.WithExecutor(exec),
		Outputs:      r.Outputs.WithExecutor(exec),
		Receipts:     r.Receipts.WithExecutor(exec),
		UTXOs:        r.UTXOs.WithExecutor(exec),
		Predicates:   r.Predicates.WithExecutor(exec),
	}
}
