// Package receipt implements the Receipt entity (spec §3.1, §8 scenario 4):
// the widest open-variant sum type in the system, with 13 receipt kinds
// sharing one wide, mostly-NULL row shape.
//
// Grounded on
// _examples/original_source/crates/domains/src/receipts/{db_item,subjects}.rs,
// which enumerate exactly these 13 variants and their role-column mapping.
package receipt

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

// Variant is the discriminator stored in receipt_type.
type Variant string

// The 13 receipt variants (spec §3.1).
const (
	Call         Variant = "call"
	Return       Variant = "return"
	ReturnData   Variant = "return_data"
	Panic        Variant = "panic"
	Revert       Variant = "revert"
	Log          Variant = "log"
	LogData      Variant = "log_data"
	Transfer     Variant = "transfer"
	TransferOut  Variant = "transfer_out"
	ScriptResult Variant = "script_result"
	MessageOut   Variant = "message_out"
	Mint         Variant = "mint"
	Burn         Variant = "burn"
)

// DefinitionIDAny is the variant-agnostic catch-all, used for queries only
// (never an insert-time subject id) — mirrors the original's ReceiptsSubject.
const DefinitionIDAny = "receipts"

// DefinitionID returns the registry id for a variant, e.g. "receipts_call".
func DefinitionID(v Variant) string { return "receipts_" + string(v) }

// Item is the persisted row shape for a receipt, wide enough for every
// variant; columns outside the active variant's role-set are nil (spec §8
// scenario 4).
type Item struct {
	Subject          string
	BlockHeight      int64
	TxID             string
	TxIndex          int32
	ReceiptIndex     int32
	ReceiptType      Variant
	FromContractID   *string // call, transfer, transfer_out
	ToContractID     *string // call, transfer
	ToAddress        *string // transfer_out
	AssetID          *string // call, transfer, transfer_out
	ContractID       *string // return/return_data/panic/revert/log/log_data/mint/burn
	SubID            *string // mint, burn
	SenderAddress    *string // message_out
	RecipientAddress *string // message_out
	Amount           *int64  // call, transfer, transfer_out, message_out
	Gas              *int64  // call
	Param1           *int64  // call
	Param2           *int64  // call
	PublishedAt      time.Time
	CreatedAt        time.Time
	Value            []byte
}

// QueryParams is the typed filter set for receipts (spec §4.D, §6.2).
type QueryParams struct {
	BlockHeight      *int64
	TxID             *string
	TxIndex          *int32
	ReceiptIndex     *int32
	ReceiptType      *Variant
	FromContractID   *string
	ToContractID     *string
	ToAddress        *string
	AssetID          *string
	ContractID       *string
	SubID            *string
	SenderAddress    *string
	RecipientAddress *string
	Address          *string
	FromBlock        *int64
	Namespace        string
}

// addressRoles implements spec §4.D's worked example exactly: Call narrows
// to {to_address, asset_id}; unconstrained expands to every role any
// variant could bind.
func addressRoles(v *Variant) []string {
	if v == nil {
		return []string{
			"to_address", "asset_id", "contract_id",
			"sender_address", "recipient_address",
		}
	}
	switch *v {
	case Call, Transfer:
		return []string{"to_address", "asset_id"}
	case TransferOut:
		return []string{"to_address", "asset_id"}
	case MessageOut:
		return []string{"sender_address", "recipient_address"}
	case Return, ReturnData, Panic, Revert, Log, LogData, Mint, Burn:
		return []string{"contract_id"}
	default:
		return []string{
			"to_address", "asset_id", "contract_id",
			"sender_address", "recipient_address",
		}
	}
}

func withCommon(lit string, extra ...subject.Segment) []subject.Segment {
	base := []subject.Segment{
		subject.Lit("receipts"), subject.Lit(lit),
		subject.Fld("block_height", "block_height"),
		subject.Fld("tx_id", "tx_id"),
		subject.Fld("tx_index", "tx_index"),
		subject.Fld("receipt_index", "receipt_index"),
	}
	return append(base, extra...)
}

func variantWhere(v Variant) sq.Sqlizer { return sq.Eq{"receipt_type": string(v)} }

// Definitions returns this entity's subject catalogue: one per variant plus
// the variant-agnostic catch-all used only for cross-variant queries.
func Definitions() []subject.Definition {
	return []subject.Definition{
		{
			ID: DefinitionID(Call), Entity: "receipts", CustomWhere: variantWhere(Call),
			Segments: withCommon("call",
				subject.Fld("from", "from_contract_id"),
				subject.Fld("to", "to_contract_id"),
				subject.Fld("asset", "asset_id")),
		},
		{
			ID: DefinitionID(Return), Entity: "receipts", CustomWhere: variantWhere(Return),
			Segments: withCommon("return", subject.Fld("contract", "contract_id")),
		},
		{
			ID: DefinitionID(ReturnData), Entity: "receipts", CustomWhere: variantWhere(ReturnData),
			Segments: withCommon("return_data", subject.Fld("contract", "contract_id")),
		},
		{
			ID: DefinitionID(Panic), Entity: "receipts", CustomWhere: variantWhere(Panic),
			Segments: withCommon("panic", subject.Fld("contract", "contract_id")),
		},
		{
			ID: DefinitionID(Revert), Entity: "receipts", CustomWhere: variantWhere(Revert),
			Segments: withCommon("revert", subject.Fld("contract", "contract_id")),
		},
		{
			ID: DefinitionID(Log), Entity: "receipts", CustomWhere: variantWhere(Log),
			Segments: withCommon("log", subject.Fld("contract", "contract_id")),
		},
		{
			ID: DefinitionID(LogData), Entity: "receipts", CustomWhere: variantWhere(LogData),
			Segments: withCommon("log_data", subject.Fld("contract", "contract_id")),
		},
		{
			ID: DefinitionID(Transfer), Entity: "receipts", CustomWhere: variantWhere(Transfer),
			Segments: withCommon("transfer",
				subject.Fld("from", "from_contract_id"),
				subject.Fld("to", "to_contract_id"),
				subject.Fld("asset", "asset_id")),
		},
		{
			ID: DefinitionID(TransferOut), Entity: "receipts", CustomWhere: variantWhere(TransferOut),
			Segments: withCommon("transfer_out",
				subject.Fld("from", "from_contract_id"),
				subject.Fld("to_address", "to_address"),
				subject.Fld("asset", "asset_id")),
		},
		{
			ID: DefinitionID(ScriptResult), Entity: "receipts", CustomWhere: variantWhere(ScriptResult),
			Segments: withCommon("script_result"),
		},
		{
			ID: DefinitionID(MessageOut), Entity: "receipts", CustomWhere: variantWhere(MessageOut),
			Segments: withCommon("message_out",
				subject.Fld("sender", "sender_address"),
				subject.Fld("recipient", "recipient_address")),
		},
		{
			ID: DefinitionID(Mint), Entity: "receipts", CustomWhere: variantWhere(Mint),
			Segments: withCommon("mint",
				subject.Fld("contract", "contract_id"),
				subject.Fld("sub_id", "sub_id")),
		},
		{
			ID: DefinitionID(Burn), Entity: "receipts", CustomWhere: variantWhere(Burn),
			Segments: withCommon("burn",
				subject.Fld("contract", "contract_id"),
				subject.Fld("sub_id", "sub_id")),
		},
		{
			ID:     DefinitionIDAny,
			Entity: "receipts",
			Segments: []subject.Segment{
				subject.Lit("receipts"),
				subject.Fld("receipt_type", "receipt_type"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("receipt_index", "receipt_index"),
			},
		},
	}
}

// SubjectOf builds the typed Subject for item, picking the per-variant
// definition id and field set (spec §4.B).
func SubjectOf(item Item) subject.Subject {
	common := map[string]string{
		"block_height":  strconv.FormatInt(item.BlockHeight, 10),
		"tx_id":         item.TxID,
		"tx_index":      strconv.FormatInt(int64(item.TxIndex), 10),
		"receipt_index": strconv.FormatInt(int64(item.ReceiptIndex), 10),
	}
	set := func(k string, v *string) {
		if v != nil {
			common[k] = *v
		}
	}
	switch item.ReceiptType {
	case Call:
		set("from", item.FromContractID)
		set("to", item.ToContractID)
		set("asset", item.AssetID)
		return subject.Subject{DefinitionID: DefinitionID(Call), Fields: common}
	case Transfer:
		set("from", item.FromContractID)
		set("to", item.ToContractID)
		set("asset", item.AssetID)
		return subject.Subject{DefinitionID: DefinitionID(Transfer), Fields: common}
	case TransferOut:
		set("from", item.FromContractID)
		set("to_address", item.ToAddress)
		set("asset", item.AssetID)
		return subject.Subject{DefinitionID: DefinitionID(TransferOut), Fields: common}
	case MessageOut:
		set("sender", item.SenderAddress)
		set("recipient", item.RecipientAddress)
		return subject.Subject{DefinitionID: DefinitionID(MessageOut), Fields: common}
	case Mint:
		set("contract", item.ContractID)
		set("sub_id", item.SubID)
		return subject.Subject{DefinitionID: DefinitionID(Mint), Fields: common}
	case Burn:
		set("contract", item.ContractID)
		set("sub_id", item.SubID)
		return subject.Subject{DefinitionID: DefinitionID(Burn), Fields: common}
	case Return, ReturnData, Panic, Revert, Log, LogData:
		set("contract", item.ContractID)
		return subject.Subject{DefinitionID: DefinitionID(item.ReceiptType), Fields: common}
	case ScriptResult:
		return subject.Subject{DefinitionID: DefinitionID(ScriptResult), Fields: common}
	default:
		common["receipt_type"] = string(item.ReceiptType)
		return subject.Subject{DefinitionID: DefinitionIDAny, Fields: common}
	}
}

// Entity implements sqlstore.Entity[Item, QueryParams].
type Entity struct{}

var _ sqlstore.Entity[Item, QueryParams] = Entity{}

func (Entity) TableName() string    { return "receipts" }
func (Entity) UniqueColumn() string { return "subject" }

func (Entity) InsertColumns() []string {
	return []string{
		"subject", "block_height", "tx_id", "tx_index", "receipt_index",
		"receipt_type", "from_contract_id", "to_contract_id", "to_address",
		"asset_id", "contract_id", "sub_id", "sender_address", "recipient_address",
		"amount", "gas", "param1", "param2",
		"published_at", "created_at", "value",
	}
}

func (Entity) InsertValues(item Item) []interface{} {
	return []interface{}{
		item.Subject, item.BlockHeight, item.TxID, item.TxIndex, item.ReceiptIndex,
		string(item.ReceiptType), item.FromContractID, item.ToContractID, item.ToAddress,
		item.AssetID, item.ContractID, item.SubID, item.SenderAddress, item.RecipientAddress,
		item.Amount, item.Gas, item.Param1, item.Param2,
		item.PublishedAt, item.CreatedAt, item.Value,
	}
}

func (Entity) ScanColumns() []string { return Entity{}.InsertColumns() }

func (Entity) ScanRow(row sqlstore.Scannable) (Item, error) {
	var it Item
	var receiptType string
	err := row.Scan(
		&it.Subject, &it.BlockHeight, &it.TxID, &it.TxIndex, &it.ReceiptIndex,
		&receiptType, &it.FromContractID, &it.ToContractID, &it.ToAddress,
		&it.AssetID, &it.ContractID, &it.SubID, &it.SenderAddress, &it.RecipientAddress,
		&it.Amount, &it.Gas, &it.Param1, &it.Param2,
		&it.PublishedAt, &it.CreatedAt, &it.Value,
	)
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.KindDbQuery, err, "scanning receipt row")
	}
	it.ReceiptType = Variant(receiptType)
	return it, nil
}

func (Entity) CursorColumns() []string {
	return []string{"block_height", "tx_index", "receipt_index"}
}

func (Entity) CursorOf(item Item) domain.Cursor {
	return domain.NewCursor(item.BlockHeight, int64(item.TxIndex), int64(item.ReceiptIndex))
}

func (Entity) BuildWhere(p QueryParams) (sq.Sqlizer, error) {
	var receiptTypeStr *string
	if p.ReceiptType != nil {
		s := string(*p.ReceiptType)
		receiptTypeStr = &s
	}
	var addressCond sq.Sqlizer
	if p.Address != nil {
		addressCond = querybuilder.AddressAnyRole(*p.Address, addressRoles(p.ReceiptType))
	}
	return querybuilder.And(
		querybuilder.EqInt64("block_height", p.BlockHeight),
		querybuilder.Eq("tx_id", p.TxID),
		querybuilder.EqInt32("tx_index", p.TxIndex),
		querybuilder.EqInt32("receipt_index", p.ReceiptIndex),
		querybuilder.Eq("receipt_type", receiptTypeStr),
		querybuilder.Eq("from_contract_id", p.FromContractID),
		querybuilder.Eq("to_contract_id", p.ToContractID),
		querybuilder.Eq("to_address", p.ToAddress),
		querybuilder.Eq("asset_id", p.AssetID),
		querybuilder.Eq("contract_id", p.ContractID),
		querybuilder.Eq("sub_id", p.SubID),
		querybuilder.Eq("sender_address", p.SenderAddress),
		querybuilder.Eq("recipient_address", p.RecipientAddress),
		addressCond,
		querybuilder.FromBlock(p.FromBlock),
		querybuilder.Namespace(p.Namespace),
	), nil
}
