// Package domain holds the primitives shared by every entity package
// (block, transaction, input, output, receipt, utxo, predicate): the
// Cursor used for keyset pagination, the RecordPacket handed from ingest
// to the repository, and the BlockTimestamp conversion. Per-entity row
// shapes and subject bindings live in the subpackages.
package domain

import (
	"strconv"
	"strings"

	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// Cursor is a deterministically ordered key built from a fixed tuple of
// numeric fields (spec §3.1, §9 "Cursor string encoding"). Implementers are
// told to compare cursors as tuples at the SQL layer rather than as
// strings, which is exactly what pkg/sqlstore does via Postgres row-wise
// comparison; Cursor itself is the wire/string encoding used in
// `after`/`before` query parameters.
type Cursor struct {
	Parts []int64
}

// NewCursor builds a cursor from its tuple components, in the entity's
// declared cursor-column order.
func NewCursor(parts ...int64) Cursor {
	return Cursor{Parts: parts}
}

// ParseCursor decodes the dotted-decimal wire form, e.g. "42.3.7".
func ParseCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, apperrors.New(apperrors.KindMalformedSubject, "empty cursor")
	}
	segs := strings.Split(s, ".")
	parts := make([]int64, len(segs))
	for i, seg := range segs {
		v, err := strconv.ParseInt(seg, 10, 64)
		if err != nil {
			return Cursor{}, apperrors.Wrap(apperrors.KindMalformedSubject, err, "invalid cursor component")
		}
		parts[i] = v
	}
	return Cursor{Parts: parts}, nil
}

// String renders the dotted-decimal wire form.
func (c Cursor) String() string {
	segs := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		segs[i] = strconv.FormatInt(p, 10)
	}
	return strings.Join(segs, ".")
}

// Compare returns -1, 0, or 1 comparing c to other lexicographically over
// their tuples. Cursors of differing arity are compared up to the shorter
// length, then the shorter cursor sorts first.
func (c Cursor) Compare(other Cursor) int {
	n := len(c.Parts)
	if len(other.Parts) < n {
		n = len(other.Parts)
	}
	for i := 0; i < n; i++ {
		if c.Parts[i] < other.Parts[i] {
			return -1
		}
		if c.Parts[i] > other.Parts[i] {
			return 1
		}
	}
	switch {
	case len(c.Parts) < len(other.Parts):
		return -1
	case len(c.Parts) > len(other.Parts):
		return 1
	default:
		return 0
	}
}

// Less reports whether c sorts strictly before other.
func (c Cursor) Less(other Cursor) bool { return c.Compare(other) < 0 }
