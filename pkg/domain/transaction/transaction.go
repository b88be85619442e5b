// Package transaction implements the Transaction entity (spec §3.1):
// keyed by subject, cursor (block_height, tx_index).
//
// Grounded on _examples/original_source/crates/domains/src/transactions and
// pkg/sqlstore's generic Entity contract.
package transaction

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

// DefinitionID is this entity's one subject shape.
const DefinitionID = "transactions"

// Item is the persisted row shape for a transaction.
type Item struct {
	Subject     string
	BlockHeight int64
	TxID        string
	TxIndex     int32
	TxStatus    string
	TxType      string
	BlobID      *string
	PublishedAt time.Time
	CreatedAt   time.Time
	Value       []byte
}

// QueryParams is the typed filter set for transactions (spec §6.2).
type QueryParams struct {
	BlockHeight *int64
	TxID        *string
	TxIndex     *int32
	TxStatus    *string
	TxType      *string
	FromBlock   *int64
	Timestamp   *time.Time
	TimeRange   *querybuilder.TimeRange
	Namespace   string
}

// Definitions returns this entity's subject catalogue entry.
func Definitions() []subject.Definition {
	return []subject.Definition{
		{
			ID:     DefinitionID,
			Entity: "transactions",
			Segments: []subject.Segment{
				subject.Lit("transactions"),
				subject.Fld("block_height", "block_height"),
				subject.Fld("tx_id", "tx_id"),
				subject.Fld("tx_index", "tx_index"),
				subject.Fld("tx_status", "tx_status"),
				subject.Fld("tx_type", "tx_type"),
			},
		},
	}
}

// SubjectOf builds the typed Subject for item (spec §4.B).
func SubjectOf(item Item) subject.Subject {
	return subject.Subject{
		DefinitionID: DefinitionID,
		Fields: map[string]string{
			"block_height": strconv.FormatInt(item.BlockHeight, 10),
			"tx_id":        item.TxID,
			"tx_index":     strconv.FormatInt(int64(item.TxIndex), 10),
			"tx_status":    item.TxStatus,
			"tx_type":      item.TxType,
		},
	}
}

// Entity implements sqlstore.Entity[Item, QueryParams].
type Entity struct{}

var _ sqlstore.Entity[Item, QueryParams] = Entity{}

func (Entity) TableName() string    { return "transactions" }
func (Entity) UniqueColumn() string { return "subject" }

func (Entity) InsertColumns() []string {
	return []string{
		"subject", "block_height", "tx_id", "tx_index", "tx_status",
		"tx_type", "blob_id", "published_at", "created_at", "value",
	}
}

func (Entity) InsertValues(item Item) []interface{} {
	return []interface{}{
		item.Subject, item.BlockHeight, item.TxID, item.TxIndex, item.TxStatus,
		item.TxType, item.BlobID, item.PublishedAt, item.CreatedAt, item.Value,
	}
}

func (Entity) ScanColumns() []string {
	return []string{
		"subject", "block_height", "tx_id", "tx_index", "tx_status",
		"tx_type", "blob_id", "published_at", "created_at", "value",
	}
}

func (Entity) ScanRow(row sqlstore.Scannable) (Item, error) {
	var it Item
	err := row.Scan(
		&it.Subject, &it.BlockHeight, &it.TxID, &it.TxIndex, &it.TxStatus,
		&it.TxType, &it.BlobID, &it.PublishedAt, &it.CreatedAt, &it.Value,
	)
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.KindDbQuery, err, "scanning transaction row")
	}
	return it, nil
}

func (Entity) CursorColumns() []string { return []string{"block_height", "tx_index"} }

func (Entity) CursorOf(item Item) domain.Cursor {
	return domain.NewCursor(item.BlockHeight, int64(item.TxIndex))
}

func (Entity) BuildWhere(p QueryParams) (sq.Sqlizer, error) {
	return querybuilder.And(
		querybuilder.EqInt64("block_height", p.BlockHeight),
		querybuilder.Eq("tx_id", p.TxID),
		querybuilder.EqInt32("tx_index", p.TxIndex),
		querybuilder.Eq("tx_status", p.TxStatus),
		querybuilder.Eq("tx_type", p.TxType),
		querybuilder.FromBlock(p.FromBlock),
		querybuilder.Time("published_at", p.Timestamp, p.TimeRange),
		querybuilder.Namespace(p.Namespace),
	), nil
}
