// Package utxo implements the UTXO entity (spec §3.1): a denormalized view
// of consumed/created outputs, keyed the same way as Input
// (block_height, tx_index, input_index) since a UTXO record shadows the
// input that consumed it.
//
// Grounded on
// _examples/original_source/crates/domains/src/utxos/queryable.rs.
package utxo

import (
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore/querybuilder"
	"github.com/fuel-streams/fuel-indexer/pkg/subject"
)

// SubjectOf builds the typed Subject for item (spec §4.B); UTXO has a
// single subject shape across all variants (DESIGN.md Open Question #3).
func SubjectOf(item Item) subject.Subject {
	return subject.Subject{
		DefinitionID: DefinitionID,
		Fields: map[string]string{
			"utxo_type":    string(item.UtxoType),
			"block_height": strconv.FormatInt(item.BlockHeight, 10),
			"tx_id":        item.TxID,
			"tx_index":     strconv.FormatInt(int64(item.TxIndex), 10),
			"input_index":  strconv.FormatInt(int64(item.InputIndex), 10),
			"utxo_id":      item.UtxoID,
		},
	}
}

// Variant mirrors input.Variant: a UTXO always shadows an input variant.
type Variant string

const (
	Coin     Variant = "coin"
	Contract Variant = "contract"
	Message  Variant = "message"
)

// DefinitionID is this entity's one subject shape.
const DefinitionID = "utxos"

// Item is the persisted row shape for a UTXO.
type Item struct {
	Subject     string
	BlockHeight int64
	TxID        string
	TxIndex     int32
	InputIndex  int32
	UtxoType    Variant
	UtxoID      string
	ContractID  *string
	PublishedAt time.Time
	CreatedAt   time.Time
	Value       []byte
}

// QueryParams is the typed filter set for UTXOs (spec §4.D, §6.2).
type QueryParams struct {
	BlockHeight *int64
	TxID        *string
	TxIndex     *int32
	InputIndex  *int32
	UtxoType    *Variant
	UtxoID      *string
	ContractID  *string
	Address     *string
	FromBlock   *int64
	Namespace   string
}

// Definitions returns this entity's subject catalogue entry.
func Definitions() []subject.Definition {
	return []subject.Definition{
		{
			ID:     DefinitionID,
			Entity: "utxos",
			Segments: []subject.Segment{
				subject.Lit("utxos"),
				subject.Fld("utxo_type", "utxo_type"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("input_index", "input_index"),
				subject.Fld("utxo_id", "utxo_id"),
			},
		},
	}
}

// Entity implements sqlstore.Entity[Item, QueryParams].
type Entity struct{}

var _ sqlstore.Entity[Item, QueryParams] = Entity{}

func (Entity) TableName() string    { return "utxos" }
func (Entity) UniqueColumn() string { return "subject" }

func (Entity) InsertColumns() []string {
	return []string{
		"subject", "block_height", "tx_id", "tx_index", "input_index",
		"utxo_type", "utxo_id", "contract_id", "published_at", "created_at", "value",
	}
}

func (Entity) InsertValues(item Item) []interface{} {
	return []interface{}{
		item.Subject, item.BlockHeight, item.TxID, item.TxIndex, item.InputIndex,
		string(item.UtxoType), item.UtxoID, item.ContractID, item.PublishedAt, item.CreatedAt, item.Value,
	}
}

func (Entity) ScanColumns() []string { return Entity{}.InsertColumns() }

func (Entity) ScanRow(row sqlstore.Scannable) (Item, error) {
	var it Item
	var utxoType string
	err := row.Scan(
		&it.Subject, &it.BlockHeight, &it.TxID, &it.TxIndex, &it.InputIndex,
		&utxoType, &it.UtxoID, &it.ContractID, &it.PublishedAt, &it.CreatedAt, &it.Value,
	)
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.KindDbQuery, err, "scanning utxo row")
	}
	it.UtxoType = Variant(utxoType)
	return it, nil
}

func (Entity) CursorColumns() []string {
	return []string{"block_height", "tx_index", "input_index"}
}

func (Entity) CursorOf(item Item) domain.Cursor {
	return domain.NewCursor(item.BlockHeight, int64(item.TxIndex), int64(item.InputIndex))
}

func (Entity) BuildWhere(p QueryParams) (sq.Sqlizer, error) {
	var utxoTypeStr *string
	if p.UtxoType != nil {
		s := string(*p.UtxoType)
		utxoTypeStr = &s
	}
	var addressCond sq.Sqlizer
	if p.Address != nil {
		addressCond = sq.Eq{"utxo_id": *p.Address}
	}
	return querybuilder.And(
		querybuilder.EqInt64("block_height", p.BlockHeight),
		querybuilder.Eq("tx_id", p.TxID),
		querybuilder.EqInt32("tx_index", p.TxIndex),
		querybuilder.EqInt32("input_index", p.InputIndex),
		querybuilder.Eq("utxo_type", utxoTypeStr),
		querybuilder.Eq("utxo_id", p.UtxoID),
		querybuilder.Eq("contract_id", p.ContractID),
		addressCond,
		querybuilder.FromBlock(p.FromBlock),
		querybuilder.Namespace(p.Namespace),
	), nil
}
