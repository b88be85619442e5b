package httpapi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
)

func TestGetTriesCamelCaseFallback(t *testing.T) {
	v := url.Values{"txId": []string{"abc"}}
	assert.Equal(t, "abc", get(v, "tx_id"))
}

func TestGetPrefersSnakeCase(t *testing.T) {
	v := url.Values{"tx_id": []string{"snake"}, "txId": []string{"camel"}}
	assert.Equal(t, "snake", get(v, "tx_id"))
}

func TestInt64ParamRejectsGarbage(t *testing.T) {
	v := url.Values{"block_height": []string{"not-a-number"}}
	_, err := int64Param(v, "block_height")
	assert.Error(t, err)
}

func TestBoundedIntParamRejectsOutOfRange(t *testing.T) {
	v := url.Values{"first": []string{"5000"}}
	_, err := boundedIntParam(v, "first", 1, 100)
	assert.Error(t, err)
}

func TestTimeRangeParamParsesPair(t *testing.T) {
	v := url.Values{"time_range": []string{"2024-01-01T00:00:00Z,2024-01-02T00:00:00Z"}}
	tr, err := timeRangeParam(v, "time_range")
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, 2024, tr.From.Year())
	assert.Equal(t, 2, tr.To.Day())
}

func TestCursorParamParsesDottedDecimal(t *testing.T) {
	v := url.Values{"after": []string{"42.3.7"}}
	c, err := cursorParam(v, "after")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, []int64{42, 3, 7}, c.Parts)
}

func TestOrderByParamDefaultsAscending(t *testing.T) {
	ob, err := orderByParam(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, sqlstore.Asc, ob)
}

func TestOrderByParamRejectsUnknown(t *testing.T) {
	_, err := orderByParam(url.Values{"order_by": []string{"sideways"}})
	assert.Error(t, err)
}

func TestPaginationParamsCombinesFields(t *testing.T) {
	v := url.Values{
		"after":    []string{"5"},
		"first":    []string{"10"},
		"order_by": []string{"desc"},
	}
	p, err := paginationParams(v)
	require.NoError(t, err)
	require.NotNil(t, p.After)
	assert.Equal(t, []int64{5}, p.After.Parts)
	require.NotNil(t, p.First)
	assert.Equal(t, 10, *p.First)
	assert.Equal(t, sqlstore.Desc, p.OrderBy)
}

func TestBlockParamsReadsFilters(t *testing.T) {
	v := url.Values{
		"blockHeight": []string{"7"},
		"producer":    []string{"alice"},
		"namespace":   []string{"ns1"},
	}
	p, err := blockParams(v)
	require.NoError(t, err)
	require.NotNil(t, p.BlockHeight)
	assert.EqualValues(t, 7, *p.BlockHeight)
	require.NotNil(t, p.Producer)
	assert.Equal(t, "alice", *p.Producer)
	assert.Equal(t, "ns1", p.Namespace)
}
