package sqlstore

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-streams/fuel-indexer/pkg/domain"
)

func baseSelect() sq.SelectBuilder {
	return sq.Select("*").From("transactions")
}

func TestApplyPaginationAfterOrdersAscendingRegardlessOfOrderBy(t *testing.T) {
	after := domain.NewCursor(2)
	p := PaginationParams{After: &after, OrderBy: Desc}

	sql, args, err := applyPagination(baseSelect(), []string{"block_height"}, p).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY block_height ASC")
	assert.Contains(t, sql, "(block_height) > (?)")
	assert.Equal(t, []interface{}{int64(2)}, args)
}

func TestApplyPaginationBeforeOrdersDescending(t *testing.T) {
	before := domain.NewCursor(5)
	p := PaginationParams{Before: &before, OrderBy: Asc, Last: intp(2)}

	sql, args, err := applyPagination(baseSelect(), []string{"block_height"}, p).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY block_height DESC")
	assert.Contains(t, sql, "(block_height) < (?)")
	assert.Equal(t, []interface{}{int64(5)}, args)
}

func TestApplyPaginationCursorIgnoresLimitOffsetFields(t *testing.T) {
	after := domain.NewCursor(2)
	withFirst := PaginationParams{After: &after, First: intp(2), Limit: intp(10), Offset: intp(5)}
	withoutFirst := PaginationParams{After: &after, Limit: intp(10), Offset: intp(5)}

	sqlWith, _, err := applyPagination(baseSelect(), []string{"block_height"}, withFirst).ToSql()
	require.NoError(t, err)
	sqlWithout, _, err := applyPagination(baseSelect(), []string{"block_height"}, withoutFirst).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sqlWith, "LIMIT 2")
	assert.NotContains(t, sqlWithout, "LIMIT")
}

func TestApplyPaginationNoCursorUsesOrderByAndLimitOffset(t *testing.T) {
	p := PaginationParams{OrderBy: Desc, Limit: intp(10), Offset: intp(5)}

	sql, _, err := applyPagination(baseSelect(), []string{"block_height"}, p).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY block_height DESC")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Contains(t, sql, "OFFSET 5")
}

func intp(i int) *int { return &i }
