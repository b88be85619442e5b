// Package block implements the Block entity (spec §3.1, §4.D): the one
// record family keyed by block_height rather than subject, since a block's
// identity is the height itself.
//
// Grounded on pkg/sqlstore's generic Entity contract; row shape follows
// spec §3.1's Block field list.
package block

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

// DefinitionID is the subject registry id for this entity's one subject
// shape: "blocks.{block_height}".
const DefinitionID = "blocks"

// Item is the persisted row shape for a block.
type Item struct {
	Subject       string
	BlockHeight   int64
	Producer      string
	Hash          string
	Version       string
	PublishedAt   time.Time
	CreatedAt     time.Time
	BlockTime     time.Time
	Value         []byte
}

// QueryParams is the typed filter set for find_one/find_many over blocks
// (spec §6.2).
type QueryParams struct {
	BlockHeight *int64
	Producer    *string
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
			Entity: "blocks",
			Segments: []subject.Segment{
				subject.Lit("blocks"),
				subject.Fld("block_height", "block_height"),
			},
		},
	}
}

// SubjectOf builds the typed Subject the ingest pipeline renders into
// item.Subject via the registry (spec §4.B "packet assembly").
func SubjectOf(item Item) subject.Subject {
	return subject.Subject{
		DefinitionID: DefinitionID,
		Fields: map[string]string{
			"block_height": strconv.FormatInt(item.BlockHeight, 10),
		},
	}
}

// Entity implements sqlstore.Entity[Item, QueryParams].
type Entity struct{}

var _ sqlstore.Entity[Item, QueryParams] = Entity{}

func (Entity) TableName() string    { return "blocks" }
func (Entity) UniqueColumn() string { return "block_height" }

func (Entity) InsertColumns() []string {
	return []string{
		"subject", "block_height", "producer", "hash", "version",
		"published_at", "created_at", "block_time", "value",
	}
}

func (Entity) InsertValues(item Item) []interface{} {
	return []interface{}{
		item.Subject, item.BlockHeight, item.Producer, item.Hash, item.Version,
		item.PublishedAt, item.CreatedAt, item.BlockTime, item.Value,
	}
}

func (Entity) ScanColumns() []string {
	return []string{
		"subject", "block_height", "producer", "hash", "version",
		"published_at", "created_at", "block_time", "value",
	}
}

func (Entity) ScanRow(row sqlstore.Scannable) (Item, error) {
	var it Item
	err := row.Scan(
		&it.Subject, &it.BlockHeight, &it.Producer, &it.Hash, &it.Version,
		&it.PublishedAt, &it.CreatedAt, &it.BlockTime, &it.Value,
	)
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.KindDbQuery, err, "scanning block row")
	}
	return it, nil
}

func (Entity) CursorColumns() []string { return []string{"block_height"} }

func (Entity) CursorOf(item Item) domain.Cursor {
	return domain.NewCursor(item.BlockHeight)
}

func (Entity) BuildWhere(p QueryParams) (sq.Sqlizer, error) {
	return querybuilder.And(
		querybuilder.EqInt64("block_height", p.BlockHeight),
		querybuilder.Eq("producer", p.Producer),
		querybuilder.FromBlock(p.FromBlock),
		querybuilder.Time("block_time", p.Timestamp, p.TimeRange),
		querybuilder.Namespace(p.Namespace),
	), nil
}

// FindLastBlockHeight returns the highest block_height persisted for
// namespace, or 0 if the namespace has no blocks yet. The ingest pipeline
// compares this against BlockSource.latest() on startup to size the
// backfill gap (spec §4.F).
func FindLastBlockHeight(ctx context.Context, exec sqlstore.Executor, namespace string) (int64, error) {
	qb := sq.Select("COALESCE(MAX(block_height), 0)").From("blocks").PlaceholderFormat(sq.Dollar)
	if cond := querybuilder.Namespace(namespace); cond != nil {
		qb = qb.Where(cond)
	}
	stmt, args, err := qb.ToSql()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindDbQuery, err, "building last-height query")
	}
	var height int64
	if err := exec.QueryRow(ctx, stmt, args...).Scan(&height); err != nil {
		return 0, apperrors.Wrap(apperrors.KindDbQuery, err, "querying last block height")
	}
	return height, nil
}
