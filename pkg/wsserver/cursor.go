package wsserver

import (
	"strconv"

	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/fuel-streams/fuel-indexer/pkg/subject"
)

// entityCursorFields names, per entity family, the subject fields that make
// up its cursor tuple, in tuple order. These mirror each domain package's
// Entity.CursorColumns() exactly, since every entity names its cursor
// columns and its subject field placeholders identically (e.g.
// input.Fld("input_index", "input_index")).
var entityCursorFields = map[string][]string{
	"blocks":       {"block_height"},
	"transactions": {"block_height", "tx_index"},
	"inputs":       {"block_height", "tx_index", "input_index"},
	"outputs":      {"block_height", "tx_index", "output_index"},
	"receipts":     {"block_height", "tx_index", "receipt_index"},
	"utxos":        {"block_height", "tx_index", "input_index"},
	"predicates":   {"block_height"},
}

// cursorFromSubject derives a record's cursor straight from its rendered
// subject string, without needing to decode the value blob. This is what
// lets the live-subscription splice (spec §4.G step 5, §8 scenario 6)
// dedup live events against the last historical cursor using only what the
// broker already hands it: a subject and a payload.
func cursorFromSubject(reg *subject.Registry, entity, subjectStr string) (domain.Cursor, error) {
	s, err := reg.Parse(subjectStr)
	if err != nil {
		return domain.Cursor{}, err
	}
	fields, ok := entityCursorFields[entity]
	if !ok {
		return domain.Cursor{}, apperrors.New(apperrors.KindMalformedSubject, "no cursor fields known for entity: "+entity)
	}
	parts := make([]int64, len(fields))
	for i, f := range fields {
		v, ok := s.Fields[f]
		if !ok {
			return domain.Cursor{}, apperrors.New(apperrors.KindMalformedSubject, "subject missing cursor field: "+f)
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Cursor{}, apperrors.Wrap(apperrors.KindMalformedSubject, err, "parsing cursor field "+f)
		}
		parts[i] = n
	}
	return domain.NewCursor(parts...), nil
}

// shouldDeliverLive reports whether a live event with the given cursor is
// new relative to the last cursor the historical replay phase emitted
// (spec §8 scenario 6: the splice must neither gap nor duplicate). A nil
// lastCursor means there was no historical phase, so everything is new.
func shouldDeliverLive(lastCursor *domain.Cursor, evCursor domain.Cursor) bool {
	return lastCursor == nil || lastCursor.Less(evCursor)
}
