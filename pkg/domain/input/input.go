// Package input implements the Input entity (spec §3.1, §4.B): an
// open-variant sum type over coin/contract/message inputs, each filling its
// own subset of nullable columns. The subject registry's discriminator
// (input_type's custom_where) keeps the per-variant split declarative
// rather than duplicated across switch statements (spec §8's "Cyclic /
// polymorphic variants" guidance).
//
// Grounded on
// _examples/original_source/crates/domains/src/inputs/queryable.rs for
// column naming and the any-role address expansion.
package input

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

// Variant is the discriminator stored in input_type.
type Variant string

const (
	Coin     Variant = "coin"
	Contract Variant = "contract"
	Message  Variant = "message"
)

// Subject definition ids, one per variant plus a catch-all used for
// queries that don't pin a specific variant.
const (
	DefinitionIDCoin     = "inputs_coin"
	DefinitionIDContract = "inputs_contract"
	DefinitionIDMessage  = "inputs_message"
	DefinitionIDAny      = "inputs"
)

// Item is the persisted row shape for an input, wide enough for every
// variant; columns outside the active variant's role-set are nil.
type Item struct {
	Subject          string
	BlockHeight      int64
	TxID             string
	TxIndex          int32
	InputIndex       int32
	InputType        Variant
	OwnerID          *string // coin
	AssetID          *string // coin
	ContractID       *string // contract
	SenderAddress    *string // message
	RecipientAddress *string // message
	PublishedAt      time.Time
	CreatedAt        time.Time
	Value            []byte
}

// QueryParams is the typed filter set for inputs (spec §4.D, §6.2).
type QueryParams struct {
	BlockHeight      *int64
	TxID             *string
	TxIndex          *int32
	InputIndex       *int32
	InputType        *Variant
	OwnerID          *string
	AssetID          *string
	ContractID       *string
	SenderAddress    *string
	RecipientAddress *string
	Address          *string // any-role filter
	FromBlock        *int64
	Namespace        string
}

// addressRoles returns, for a given variant (nil meaning "any"), the
// columns an address filter should OR across (spec §4.D).
func addressRoles(v *Variant) []string {
	if v == nil {
		return []string{"owner_id", "asset_id", "contract_id", "sender_address", "recipient_address"}
	}
	switch *v {
	case Coin:
		return []string{"owner_id", "asset_id"}
	case Contract:
		return []string{"contract_id"}
	case Message:
		return []string{"sender_address", "recipient_address"}
	default:
		return []string{"owner_id", "asset_id", "contract_id", "sender_address", "recipient_address"}
	}
}

// Definitions returns this entity's subject catalogue: one per variant plus
// the variant-agnostic catch-all.
func Definitions() []subject.Definition {
	return []subject.Definition{
		{
			ID:     DefinitionIDCoin,
			Entity: "inputs",
			Segments: []subject.Segment{
				subject.Lit("inputs"), subject.Lit("coin"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("input_index", "input_index"),
				subject.Fld("owner", "owner_id"),
				subject.Fld("asset", "asset_id"),
			},
			CustomWhere: sq.Eq{"input_type": string(Coin)},
		},
		{
			ID:     DefinitionIDContract,
			Entity: "inputs",
			Segments: []subject.Segment{
				subject.Lit("inputs"), subject.Lit("contract"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("input_index", "input_index"),
				subject.Fld("contract", "contract_id"),
			},
			CustomWhere: sq.Eq{"input_type": string(Contract)},
		},
		{
			ID:     DefinitionIDMessage,
			Entity: "inputs",
			Segments: []subject.Segment{
				subject.Lit("inputs"), subject.Lit("message"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("input_index", "input_index"),
				subject.Fld("sender", "sender_address"),
				subject.Fld("recipient", "recipient_address"),
			},
			CustomWhere: sq.Eq{"input_type": string(Message)},
		},
		{
			ID:     DefinitionIDAny,
			Entity: "inputs",
			Segments: []subject.Segment{
				subject.Lit("inputs"),
				subject.Fld("input_type", "input_type"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("input_index", "input_index"),
			},
		},
	}
}

// SubjectOf builds the typed Subject for item, picking the per-variant
// definition id and field set (spec §4.B).
func SubjectOf(item Item) subject.Subject {
	common := map[string]string{
		"block_height": strconv.FormatInt(item.BlockHeight, 10),
		"tx_id":        item.TxID,
		"tx_index":     strconv.FormatInt(int64(item.TxIndex), 10),
		"input_index":  strconv.FormatInt(int64(item.InputIndex), 10),
	}
	defID := DefinitionIDAny
	switch item.InputType {
	case Coin:
		defID = DefinitionIDCoin
		setIfPresent(common, "owner", item.OwnerID)
		setIfPresent(common, "asset", item.AssetID)
	case Contract:
		defID = DefinitionIDContract
		setIfPresent(common, "contract", item.ContractID)
	case Message:
		defID = DefinitionIDMessage
		setIfPresent(common, "sender", item.SenderAddress)
		setIfPresent(common, "recipient", item.RecipientAddress)
	}
	return subject.Subject{DefinitionID: defID, Fields: common}
}

func setIfPresent(fields map[string]string, key string, v *string) {
	if v != nil {
		fields[key] = *v
	}
}

// Entity implements sqlstore.Entity[Item, QueryParams].
type Entity struct{}

var _ sqlstore.Entity[Item, QueryParams] = Entity{}

func (Entity) TableName() string    { return "inputs" }
func (Entity) UniqueColumn() string { return "subject" }

func (Entity) InsertColumns() []string {
	return []string{
		"subject", "block_height", "tx_id", "tx_index", "input_index",
		"input_type", "owner_id", "asset_id", "contract_id",
		"sender_address", "recipient_address", "published_at", "created_at", "value",
	}
}

func (Entity) InsertValues(item Item) []interface{} {
	return []interface{}{
		item.Subject, item.BlockHeight, item.TxID, item.TxIndex, item.InputIndex,
		string(item.InputType), item.OwnerID, item.AssetID, item.ContractID,
		item.SenderAddress, item.RecipientAddress, item.PublishedAt, item.CreatedAt, item.Value,
	}
}

func (Entity) ScanColumns() []string { return Entity{}.InsertColumns() }

func (Entity) ScanRow(row sqlstore.Scannable) (Item, error) {
	var it Item
	var inputType string
	err := row.Scan(
		&it.Subject, &it.BlockHeight, &it.TxID, &it.TxIndex, &it.InputIndex,
		&inputType, &it.OwnerID, &it.AssetID, &it.ContractID,
		&it.SenderAddress, &it.RecipientAddress, &it.PublishedAt, &it.CreatedAt, &it.Value,
	)
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.KindDbQuery, err, "scanning input row")
	}
	it.InputType = Variant(inputType)
	return it, nil
}

func (Entity) CursorColumns() []string {
	return []string{"block_height", "tx_index", "input_index"}
}

func (Entity) CursorOf(item Item) domain.Cursor {
	return domain.NewCursor(item.BlockHeight, int64(item.TxIndex), int64(item.InputIndex))
}

func (Entity) BuildWhere(p QueryParams) (sq.Sqlizer, error) {
	var inputTypeStr *string
	if p.InputType != nil {
		s := string(*p.InputType)
		inputTypeStr = &s
	}
	return querybuilder.And(
		querybuilder.EqInt64("block_height", p.BlockHeight),
		querybuilder.Eq("tx_id", p.TxID),
		querybuilder.EqInt32("tx_index", p.TxIndex),
		querybuilder.EqInt32("input_index", p.InputIndex),
		querybuilder.Eq("input_type", inputTypeStr),
		querybuilder.Eq("owner_id", p.OwnerID),
		querybuilder.Eq("asset_id", p.AssetID),
		querybuilder.Eq("contract_id", p.ContractID),
		querybuilder.Eq("sender_address", p.SenderAddress),
		querybuilder.Eq("recipient_address", p.RecipientAddress),
		addressCondition(p),
		querybuilder.FromBlock(p.FromBlock),
		querybuilder.Namespace(p.Namespace),
	), nil
}

func addressCondition(p QueryParams) sq.Sqlizer {
	if p.Address == nil {
		return nil
	}
	return querybuilder.AddressAnyRole(*p.Address, addressRoles(p.InputType))
}
