package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-streams/fuel-indexer/pkg/dataparser"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
)

type fakeItem struct {
	Value []byte
}

func TestListHandlerReturnsDecodedRows(t *testing.T) {
	parser := dataparser.PlainJSON{}
	v1, _ := parser.Encode(map[string]string{"a": "1"})
	v2, _ := parser.Encode(map[string]string{"a": "2"})

	find := func(ctx context.Context, params struct{}, pagination sqlstore.PaginationParams) ([]fakeItem, error) {
		return []fakeItem{{Value: v1}, {Value: v2}}, nil
	}

	h := listHandler(zerolog.Nop(), parser, find,
		func(v url.Values) (struct{}, error) { return struct{}{}, nil },
		func(i fakeItem) []byte { return i.Value },
	)

	req := httptest.NewRequest(http.MethodGet, "/fake", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.JSONEq(t, `{"a":"1"}`, string(body.Data[0]))
}

func TestListHandlerSurfacesParamError(t *testing.T) {
	find := func(ctx context.Context, params struct{}, pagination sqlstore.PaginationParams) ([]fakeItem, error) {
		t.Fatal("findMany should not be called when param parsing fails")
		return nil, nil
	}

	h := listHandler(zerolog.Nop(), dataparser.PlainJSON{}, find,
		func(v url.Values) (struct{}, error) {
			return struct{}{}, apperrors.New(apperrors.KindMalformedSubject, "bad filter")
		},
		func(i fakeItem) []byte { return i.Value },
	)

	req := httptest.NewRequest(http.MethodGet, "/fake", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListHandlerSkipsUndecodableRows(t *testing.T) {
	parser := dataparser.PlainJSON{}
	good, _ := parser.Encode(map[string]string{"ok": "yes"})

	find := func(ctx context.Context, params struct{}, pagination sqlstore.PaginationParams) ([]fakeItem, error) {
		return []fakeItem{{Value: []byte("not json")}, {Value: good}}, nil
	}

	h := listHandler(zerolog.Nop(), parser, find,
		func(v url.Values) (struct{}, error) { return struct{}{}, nil },
		func(i fakeItem) []byte { return i.Value },
	)

	req := httptest.NewRequest(http.MethodGet, "/fake", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.JSONEq(t, `{"ok":"yes"}`, string(body.Data[0]))
}
