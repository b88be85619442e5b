package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/fuel-streams/fuel-indexer/pkg/dataparser"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
)

// listResponse is the envelope every list endpoint returns.
type listResponse struct {
	Data []json.RawMessage `json:"data"`
}

// listHandler adapts one entity's FindMany method value into an
// http.HandlerFunc: parse filters and pagination, run the query, decode
// each row's opaque value blob, and write the JSON envelope. Generic over
// Item/Params so each entity only supplies its own filter parser and
// value accessor.
func listHandler[Item any, Params any](
	log zerolog.Logger,
	parser dataparser.Parser,
	findMany func(ctx context.Context, params Params, pagination sqlstore.PaginationParams) ([]Item, error),
	paramsOf func(v url.Values) (Params, error),
	valueOf func(Item) []byte,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		params, err := paramsOf(r.URL.Query())
		if err != nil {
			writeError(w, log, err)
			return
		}
		page, err := paginationParams(r.URL.Query())
		if err != nil {
			writeError(w, log, err)
			return
		}

		items, err := findMany(r.Context(), params, page)
		if err != nil {
			writeError(w, log, err)
			return
		}

		data := make([]json.RawMessage, 0, len(items))
		for _, it := range items {
			var payload interface{}
			if err := parser.Decode(valueOf(it), &payload); err != nil {
				log.Warn().Err(err).Msg("skipping record: decode failed")
				continue
			}
			raw, err := json.Marshal(payload)
			if err != nil {
				log.Warn().Err(err).Msg("skipping record: re-encoding failed")
				continue
			}
			data = append(data, raw)
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(listResponse{Data: data})
	}
}

func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := apperrors.HTTPStatus(apperrors.KindOf(err))
	log.Error().Err(err).Int("status", status).Msg("request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apperrors.ServiceErrorOf(err))
}
