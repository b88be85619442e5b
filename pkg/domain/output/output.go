// Package output implements the Output entity (spec §3.1): coin, contract,
// change, variable, and contract_created variants.
//
// Grounded on
// _examples/original_source/crates/domains/src/outputs/queryable.rs.
package output

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

// SubjectOf builds the typed Subject for item, picking the per-variant
// definition id and field set (spec §4.B).
func SubjectOf(item Item) subject.Subject {
	common := map[string]string{
		"block_height": strconv.FormatInt(item.BlockHeight, 10),
		"tx_id":        item.TxID,
		"tx_index":     strconv.FormatInt(int64(item.TxIndex), 10),
		"output_index": strconv.FormatInt(int64(item.OutputIndex), 10),
	}
	defID := DefinitionIDAny
	switch item.OutputType {
	case Coin:
		defID = DefinitionIDCoin
	case Change:
		defID = DefinitionIDChange
	case Variable:
		defID = DefinitionIDVariable
	case Contract:
		defID = DefinitionIDContract
	case ContractCreated:
		defID = DefinitionIDContractCreated
	}
	switch item.OutputType {
	case Coin, Change, Variable:
		if item.ToAddress != nil {
			common["to"] = *item.ToAddress
		}
		if item.AssetID != nil {
			common["asset"] = *item.AssetID
		}
	case Contract, ContractCreated:
		if item.ContractID != nil {
			common["contract"] = *item.ContractID
		}
	}
	return subject.Subject{DefinitionID: defID, Fields: common}
}

// Variant is the discriminator stored in output_type.
type Variant string

const (
	Coin             Variant = "coin"
	Contract         Variant = "contract"
	Change           Variant = "change"
	Variable         Variant = "variable"
	ContractCreated  Variant = "contract_created"
)

// Subject definition ids.
const (
	DefinitionIDCoin            = "outputs_coin"
	DefinitionIDContract        = "outputs_contract"
	DefinitionIDChange          = "outputs_change"
	DefinitionIDVariable        = "outputs_variable"
	DefinitionIDContractCreated = "outputs_contract_created"
	DefinitionIDAny             = "outputs"
)

// Item is the persisted row shape for an output.
type Item struct {
	Subject     string
	BlockHeight int64
	TxID        string
	TxIndex     int32
	OutputIndex int32
	OutputType  Variant
	ToAddress   *string // coin, change, variable
	AssetID     *string // coin, change, variable
	ContractID  *string // contract, contract_created
	PublishedAt time.Time
	CreatedAt   time.Time
	Value       []byte
}

// QueryParams is the typed filter set for outputs (spec §4.D, §6.2).
type QueryParams struct {
	BlockHeight *int64
	TxID        *string
	TxIndex     *int32
	OutputIndex *int32
	OutputType  *Variant
	ToAddress   *string
	AssetID     *string
	ContractID  *string
	Address     *string
	FromBlock   *int64
	Namespace   string
}

func addressRoles(v *Variant) []string {
	if v == nil {
		return []string{"to_address", "asset_id", "contract_id"}
	}
	switch *v {
	case Coin, Variable, Change:
		return []string{"to_address", "asset_id"}
	case Contract, ContractCreated:
		return []string{"contract_id"}
	default:
		return []string{"to_address", "asset_id", "contract_id"}
	}
}

func coinLikeSegments(lit string) []subject.Segment {
	return []subject.Segment{
		subject.Lit("outputs"), subject.Lit(lit),
		subject.Fld("block_height", "block_height"),
		subject.Fld("tx_id", "tx_id"),
		subject.Fld("tx_index", "tx_index"),
		subject.Fld("output_index", "output_index"),
		subject.Fld("to", "to_address"),
		subject.Fld("asset", "asset_id"),
	}
}

// Definitions returns this entity's subject catalogue.
func Definitions() []subject.Definition {
	return []subject.Definition{
		{ID: DefinitionIDCoin, Entity: "outputs", Segments: coinLikeSegments("coin"), CustomWhere: sq.Eq{"output_type": string(Coin)}},
		{ID: DefinitionIDChange, Entity: "outputs", Segments: coinLikeSegments("change"), CustomWhere: sq.Eq{"output_type": string(Change)}},
		{ID: DefinitionIDVariable, Entity: "outputs", Segments: coinLikeSegments("variable"), CustomWhere: sq.Eq{"output_type": string(Variable)}},
		{
			ID:     DefinitionIDContract,
			Entity: "outputs",
			Segments: []subject.Segment{
				subject.Lit("outputs"), subject.Lit("contract"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("output_index", "output_index"),
				subject.Fld("contract", "contract_id"),
			},
			CustomWhere: sq.Eq{"output_type": string(Contract)},
		},
		{
			ID:     DefinitionIDContractCreated,
			Entity: "outputs",
			Segments: []subject.Segment{
				subject.Lit("outputs"), subject.Lit("contract_created"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("output_index", "output_index"),
				subject.Fld("contract", "contract_id"),
			},
			CustomWhere: sq.Eq{"output_type": string(ContractCreated)},
		},
		{
			ID:     DefinitionIDAny,
			Entity: "outputs",
			Segments: []subject.Segment{
				subject.Lit("outputs"),
				subject.Fld("output_type", "output_type"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("output_index", "output_index"),
			},
		},
	}
}

// Entity implements sqlstore.Entity[Item, QueryParams].
type Entity struct{}

var _ sqlstore.Entity[Item, QueryParams] = Entity{}

func (Entity) TableName() string    { return "outputs" }
func (Entity) UniqueColumn() string { return "subject" }

func (Entity) InsertColumns() []string {
	return []string{
		"subject", "block_height", "tx_id", "tx_index", "output_index",
		"output_type", "to_address", "asset_id", "contract_id",
		"published_at", "created_at", "value",
	}
}

func (Entity) InsertValues(item Item) []interface{} {
	return []interface{}{
		item.Subject, item.BlockHeight, item.TxID, item.TxIndex, item.OutputIndex,
		string(item.OutputType), item.ToAddress, item.AssetID, item.ContractID,
		item.PublishedAt, item.CreatedAt, item.Value,
	}
}

func (Entity) ScanColumns() []string { return Entity{}.InsertColumns() }

func (Entity) ScanRow(row sqlstore.Scannable) (Item, error) {
	var it Item
	var outputType string
	err := row.Scan(
		&it.Subject, &it.BlockHeight, &it.TxID, &it.TxIndex, &it.OutputIndex,
		&outputType, &it.ToAddress, &it.AssetID, &it.ContractID,
		&it.PublishedAt, &it.CreatedAt, &it.Value,
	)
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.KindDbQuery, err, "scanning output row")
	}
	it.OutputType = Variant(outputType)
	return it, nil
}

func (Entity) CursorColumns() []string {
	return []string{"block_height", "tx_index", "output_index"}
}

func (Entity) CursorOf(item Item) domain.Cursor {
	return domain.NewCursor(item.BlockHeight, int64(item.TxIndex), int64(item.OutputIndex))
}

func (Entity) BuildWhere(p QueryParams) (sq.Sqlizer, error) {
	var outputTypeStr *string
	if p.OutputType != nil {
		s := string(*p.OutputType)
		outputTypeStr = &s
	}
	var addressCond sq.Sqlizer
	if p.Address != nil {
		addressCond = querybuilder.AddressAnyRole(*p.Address, addressRoles(p.OutputType))
	}
	return querybuilder.And(
		querybuilder.EqInt64("block_height", p.BlockHeight),
		querybuilder.Eq("tx_id", p.TxID),
		querybuilder.EqInt32("tx_index", p.TxIndex),
		querybuilder.EqInt32("output_index", p.OutputIndex),
		querybuilder.Eq("output_type", outputTypeStr),
		querybuilder.Eq("to_address", p.ToAddress),
		querybuilder.Eq("asset_id", p.AssetID),
		querybuilder.Eq("contract_id", p.ContractID),
		addressCond,
		querybuilder.FromBlock(p.FromBlock),
		querybuilder.Namespace(p.Namespace),
	), nil
}
