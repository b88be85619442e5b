package wsserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/block"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
	"github.com/fuel-streams/fuel-indexer/pkg/subject"
)

func testRegistry() *subject.Registry {
	return subject.NewRegistry(block.Definitions()...)
}

func TestCursorFromSubjectBlocks(t *testing.T) {
	reg := testRegistry()
	c, err := cursorFromSubject(reg, "blocks", "blocks.42")
	require.NoError(t, err)
	assert.Equal(t, domain.NewCursor(42), c)
}

func TestCursorFromSubjectUnknownEntity(t *testing.T) {
	reg := testRegistry()
	_, err := cursorFromSubject(reg, "nonexistent", "blocks.42")
	assert.Error(t, err)
}

func TestShouldDeliverLive(t *testing.T) {
	ten := domain.NewCursor(10)
	eleven := domain.NewCursor(11)

	assert.True(t, shouldDeliverLive(nil, ten))
	assert.True(t, shouldDeliverLive(&ten, eleven))
	assert.False(t, shouldDeliverLive(&eleven, ten))
	assert.False(t, shouldDeliverLive(&ten, ten))
}

// fakeStream is a stream that needs no database: each fetch call hands out
// the next entry of pages, ignoring its arguments, and returns no records
// once pages is used up.
type fakeStream struct {
	pages [][]record
	calls int
}

func (f *fakeStream) fetch(ctx context.Context, namespace string, fromHeight int64, after *domain.Cursor, limit int) ([]record, error) {
	if f.calls >= len(f.pages) {
		return nil, nil
	}
	p := f.pages[f.calls]
	f.calls++
	return p, nil
}

func TestBuildStreamAdaptsGenericFindMany(t *testing.T) {
	find := func(ctx context.Context, params block.QueryParams, pagination sqlstore.PaginationParams) ([]block.Item, error) {
		assert.Equal(t, "ns", params.Namespace)
		require.NotNil(t, params.FromBlock)
		assert.EqualValues(t, 5, *params.FromBlock)
		assert.Equal(t, sqlstore.Asc, pagination.OrderBy)
		return []block.Item{
			{Subject: "blocks.5", BlockHeight: 5, Value: []byte("five")},
			{Subject: "blocks.6", BlockHeight: 6, Value: []byte("six")},
		}, nil
	}

	s := buildStream(
		find,
		func(ns string, fromHeight *int64) block.QueryParams {
			return block.QueryParams{Namespace: ns, FromBlock: fromHeight}
		},
		block.Entity{}.CursorOf,
		func(i block.Item) string { return i.Subject },
		func(i block.Item) []byte { return i.Value },
	)

	recs, err := s.fetch(context.Background(), "ns", 5, nil, 200)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "blocks.5", recs[0].subject)
	assert.Equal(t, domain.NewCursor(5), recs[0].cursor)
	assert.Equal(t, []byte("six"), recs[1].value)
}
