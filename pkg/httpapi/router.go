package httpapi

import (
	"github.com/gorilla/mux"

	"github.com/fuel-streams/fuel-indexer/pkg/dataparser"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/block"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/catalogue"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/input"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/output"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/predicate"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/receipt"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/transaction"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/utxo"
	"github.com/fuel-streams/fuel-indexer/pkg/logging"
)

// NewRouter wires one GET list endpoint per entity (spec §6.2) onto repos,
// decoding each row's value blob through parser before writing it out.
func NewRouter(repos *catalogue.Repositories, parser dataparser.Parser) *mux.Router {
	log := logging.Component("httpapi")
	r := mux.NewRouter()

	r.HandleFunc("/blocks", listHandler(log, parser,
		repos.Blocks.FindMany, blockParams,
		func(i block.Item) []byte { return i.Value },
	)).Methods("GET")

	r.HandleFunc("/transactions", listHandler(log, parser,
		repos.Transactions.FindMany, transactionParams,
		func(i transaction.Item) []byte { return i.Value },
	)).Methods("GET")

	r.HandleFunc("/inputs", listHandler(log, parser,
		repos.Inputs.FindMany, inputParams,
		func(i input.Item) []byte { return i.Value },
	)).Methods("GET")

	r.HandleFunc("/outputs", listHandler(log, parser,
		repos.Outputs.FindMany, outputParams,
		func(i output.Item) []byte { return i.Value },
	)).Methods("GET")

	r.HandleFunc("/receipts", listHandler(log, parser,
		repos.Receipts.FindMany, receiptParams,
		func(i receipt.Item) []byte { return i.Value },
	)).Methods("GET")

	r.HandleFunc("/utxos", listHandler(log, parser,
		repos.UTXOs.FindMany, utxoParams,
		func(i utxo.Item) []byte { return i.Value },
	)).Methods("GET")

	r.HandleFunc("/predicates", listHandler(log, parser,
		repos.Predicates.FindMany, predicateParams,
		func(i predicate.Item) []byte { return i.Value },
	)).Methods("GET")

	return r
}
