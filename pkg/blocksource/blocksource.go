// Package blocksource defines the BlockSource collaborator: the Fuel node
// client library that yields raw blocks. Its implementation is explicitly
// out of scope (spec.md §1) — this package only pins the interface the
// ingest pipeline drives, plus a deterministic in-memory implementation
// used by tests and local development in place of a real Fuel node RPC
// client, the same role the teacher's mock eth client plays in
// pkg/eventprocessor/eventfeed/impl/eventfeed_test.go.
package blocksource

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// RawBlock is the unprocessed block payload as handed to Packetize (spec
// §4.F): a height, the node-native encoded bytes, and enough header detail
// for the ingest pipeline to derive the Block record without decoding the
// body. The body's own decoding into transactions/inputs/outputs/receipts/
// utxos is the DataParser's job (pkg/dataparser).
type RawBlock struct {
	Height    int64
	Producer  string
	Hash      string
	Version   string
	Tai64Time uint64 // Fuel TAI64 seconds-since-epoch, see pkg/domain/block.BlockTimestamp
	Body      []byte
}

// Source is the BlockSource contract (spec §1, §4.F): something that knows
// the chain's current head and can yield blocks one at a time, starting
// from a given height, until ctx is cancelled.
type Source interface {
	// Latest returns the highest finalized block height the node currently
	// has, used by the ingest pipeline to size the backfill gap on startup.
	Latest(ctx context.Context) (int64, error)

	// Stream yields blocks starting at fromHeight (inclusive) in strictly
	// increasing height order onto out, blocking until ctx is cancelled.
	// Implementations must close out when they return.
	Stream(ctx context.Context, fromHeight int64, out chan<- RawBlock) error
}

// Memory is a Source backed by a fixed, in-process block list. It never
// blocks on network I/O, so it is used in place of a real Fuel node
// client for tests and local development (spec.md §1 names the real
// client as an external collaborator, not something this repo builds).
type Memory struct {
	mu     sync.Mutex
	blocks []RawBlock
}

// NewMemory builds a Memory source pre-loaded with blocks, which need not
// be pre-sorted.
func NewMemory(blocks ...RawBlock) *Memory {
	sorted := append([]RawBlock(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Height < sorted[j].Height })
	return &Memory{blocks: sorted}
}

// Append adds more blocks. A Stream call already in flight does not see
// them: Stream replays only the blocks held when it started.
func (m *Memory) Append(blocks ...RawBlock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks = append(m.blocks, blocks...)
	sort.Slice(m.blocks, func(i, j int) bool { return m.blocks[i].Height < m.blocks[j].Height })
}

var _ Source = (*Memory)(nil)

func (m *Memory) Latest(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.blocks) == 0 {
		return 0, nil
	}
	return m.blocks[len(m.blocks)-1].Height, nil
}

// Stream replays every held block with height >= fromHeight, in order,
// then blocks until ctx is cancelled (mirroring a live node's tail that
// has momentarily caught up but stays connected).
func (m *Memory) Stream(ctx context.Context, fromHeight int64, out chan<- RawBlock) error {
	defer close(out)

	m.mu.Lock()
	pending := make([]RawBlock, 0, len(m.blocks))
	for _, b := range m.blocks {
		if b.Height >= fromHeight {
			pending = append(pending, b)
		}
	}
	m.mu.Unlock()

	for _, b := range pending {
		select {
		case out <- b:
		case <-ctx.Done():
			return apperrors.Wrap(apperrors.KindBrokerReceiving, ctx.Err(), "block source stream cancelled")
		}
	}

	<-ctx.Done()
	return nil
}
