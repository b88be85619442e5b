// Package ingest implements the Ingest Pipeline (spec §4.F): it drives
// BlockSource → packetize → Repository.insert → Broker.publish, performing
// catch-up from the last-persisted height before following the live tail.
//
// The pipeline is split into a producer and a consumer, mirroring the
// Message Broker's two channels (spec §4.E): the producer reads raw
// blocks from the BlockSource and hands them to the durable block queue;
// the consumer pulls from that queue, does the actual record translation
// and insert, and republishes each persisted record on the ephemeral
// event bus. This is "the handoff from ingest to the publisher that
// actually runs record translation and insert" spec §4.E names — the
// producer is the handoff, the consumer is the publisher.
//
// Grounded on the teacher's pkg/eventprocessor/eventfeed/impl/eventfeed.go
// for the overall shape: a New(...) constructor, a blocking Run loop, a
// per-batch DB transaction rolled back on the first failed write, and
// last-seen height tracking through shared memory
// (pkg/ingest/sharedmemory.go, adapted from the teacher's
// pkg/sharedmemory package).
package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fuel-streams/fuel-indexer/pkg/blocksource"
	"github.com/fuel-streams/fuel-indexer/pkg/broker"
	"github.com/fuel-streams/fuel-indexer/pkg/dataparser"
	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/block"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/catalogue"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/fuel-streams/fuel-indexer/pkg/logging"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore/postgres"
	"github.com/fuel-streams/fuel-indexer/pkg/subject"
)

// TxBatchSize is the number of transactions persisted per DB transaction
// during backfill (spec §4.F "chunks of 50 within a single DB
// transaction").
const TxBatchSize = 50

// ShutdownTimeout bounds the broker flush Run performs once the producer
// and consumer have stopped. The wait for in-flight work itself is bounded
// by cmd/api.
const ShutdownTimeout = 30 * time.Second

// Config holds the pipeline's tunables, sourced from cmd/api/config.go.
type Config struct {
	Namespace      string
	BlockBatchSize int // broker pull batch size; defaults to 16 if zero
}

// Pipeline wires every collaborator named in spec §4.F's data flow.
type Pipeline struct {
	cfg      Config
	log      zerolog.Logger
	source   blocksource.Source
	parser   dataparser.Parser
	broker   broker.Broker
	store    *postgres.Store
	repos    *catalogue.Repositories
	registry *subject.Registry
	sm       *sharedMemory
}

// New constructs a Pipeline. repos and registry are typically built once
// with catalogue.NewRepositories/NewRegistry and shared with the HTTP/WS
// read surfaces.
func New(
	cfg Config,
	source blocksource.Source,
	parser dataparser.Parser,
	brk broker.Broker,
	store *postgres.Store,
	repos *catalogue.Repositories,
	registry *subject.Registry,
) *Pipeline {
	if cfg.BlockBatchSize <= 0 {
		cfg.BlockBatchSize = 16
	}
	return &Pipeline{
		cfg:      cfg,
		log:      logging.Component("ingest"),
		source:   source,
		parser:   parser,
		broker:   brk,
		store:    store,
		repos:    repos,
		registry: registry,
		sm:       newSharedMemory(),
	}
}

// Run is the pipeline's main entry point: it provisions the broker,
// starts the producer and consumer concurrently, and returns only when
// ctx is cancelled and both have drained (spec §5 graceful shutdown).
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.broker.Setup(ctx); err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return p.runProducer(gctx) })
	group.Go(func() error { return p.runConsumer(gctx) })

	err := group.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if ferr := p.broker.Flush(flushCtx); ferr != nil {
		p.log.Error().Err(ferr).Msg("flushing broker on shutdown")
	}
	return err
}

// runProducer backfills from the block after the last persisted height
// (height 1 if this namespace has no data yet) and streams every subsequent
// block into the durable block queue (spec §4.F "On startup... backfills
// the gap... before subscribing to the live tail").
func (p *Pipeline) runProducer(ctx context.Context) error {
	lastHeight, err := block.FindLastBlockHeight(ctx, p.store, p.cfg.Namespace)
	if err != nil {
		return err
	}
	latest, err := p.source.Latest(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.KindBrokerConnection, err, "querying block source head")
	}

	fromHeight := lastHeight + 1
	p.log.Info().
		Int64("last_persisted", lastHeight).
		Int64("source_latest", latest).
		Int64("from_height", fromHeight).
		Msg("starting backfill")

	rawCh := make(chan blocksource.RawBlock)
	streamErr := make(chan error, 1)
	go func() { streamErr <- p.source.Stream(ctx, fromHeight, rawCh) }()

	for rb := range rawCh {
		payload, err := p.parser.Encode(rb)
		if err != nil {
			return err
		}
		if err := p.broker.PublishBlock(ctx, rb.Height, payload); err != nil {
			return err
		}
		p.sm.setLastSeenBlockHeight(p.cfg.Namespace, rb.Height)
	}

	select {
	case err := <-streamErr:
		return err
	default:
		return nil
	}
}

// runConsumer pulls raw blocks off the durable queue, persists every
// record they contain, republishes each on the ephemeral event bus, and
// acknowledges the message — spec §4.F's Packetize → PersistAll → Publish
// → Ack state machine, one block at a time. A persist failure naks the
// message (redelivered after ack_wait) instead of acking a partial write.
func (p *Pipeline) runConsumer(ctx context.Context) error {
	messages, err := p.broker.ReceiveBlocksStream(ctx, p.cfg.BlockBatchSize)
	if err != nil {
		return err
	}

	for msg := range messages {
		var raw blocksource.RawBlock
		if err := p.parser.Decode(msg.Payload(), &raw); err != nil {
			p.log.Error().Err(err).Msg("decoding queued block, nak'ing")
			_ = msg.Nak()
			continue
		}

		if err := p.processBlock(ctx, raw); err != nil {
			p.log.Error().Err(err).Int64("height", raw.Height).Msg("processing block, nak'ing")
			_ = msg.Nak()
			continue
		}

		if err := msg.Ack(); err != nil {
			p.log.Error().Err(err).Int64("height", raw.Height).Msg("acking block")
		}
	}
	return nil
}

// processBlock implements Packetize+PersistAll+Publish for one block: the
// block header is inserted standalone, then transactions are walked in
// chunks of TxBatchSize, each chunk inside its own DB transaction (spec
// §4.F, §5 "A DB transaction spans a single 50-tx batch").
func (p *Pipeline) processBlock(ctx context.Context, raw blocksource.RawBlock) error {
	var wb WireBlock
	if err := p.parser.Decode(raw.Body, &wb); err != nil {
		return apperrors.Wrap(apperrors.KindDecodeFailure, err, "decoding block body")
	}
	wb.Producer, wb.Hash, wb.Version, wb.Tai64Time = raw.Producer, raw.Hash, raw.Version, raw.Tai64Time
	ts := domain.FromTai64(wb.Tai64Time)

	headerEvt, err := p.persistBlock(ctx, p.store, raw.Height, wb, ts)
	if err != nil {
		return err
	}
	if err := p.publish(ctx, headerEvt); err != nil {
		return err
	}

	for start := 0; start < len(wb.Transactions); start += TxBatchSize {
		end := start + TxBatchSize
		if end > len(wb.Transactions) {
			end = len(wb.Transactions)
		}
		if err := p.persistTxBatch(ctx, raw.Height, wb.Transactions[start:end], start, ts); err != nil {
			return err
		}
	}
	return nil
}

// persistTxBatch runs one chunk of transactions (and everything they
// carry) inside a single DB transaction, publishing every record's event
// only after the transaction commits (never publish an uncommitted row).
func (p *Pipeline) persistTxBatch(ctx context.Context, height int64, batch []WireTransaction, startIndex int, ts domain.BlockTimestamp) error {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.KindDbInsert, err, "beginning batch transaction")
	}

	var events []emitted
	now := time.Now().UTC()
	for i, wtx := range batch {
		txIndex := int32(startIndex + i)
		evts, err := p.persistTransaction(ctx, tx, height, txIndex, wtx, now, ts)
		if err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		events = append(events, evts...)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(apperrors.KindDbInsert, err, "committing batch transaction")
	}

	for _, e := range events {
		if err := p.publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) publish(ctx context.Context, e emitted) error {
	return p.broker.PublishEvent(ctx, e.subject, e.value)
}
