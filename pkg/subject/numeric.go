package subject

import (
	"strconv"

	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// ParseBlockHeight parses the wire (unsigned, 64-bit) form of a block
// height into the internal signed representation used for storage, per
// spec §4.A "Numeric semantics".
func ParseBlockHeight(s string) (int64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindMalformedSubject, err, "invalid block height")
	}
	height := int64(v)
	if height < 0 {
		return 0, apperrors.New(apperrors.KindMalformedSubject, "block height overflows signed 64-bit storage")
	}
	return height, nil
}

// FormatBlockHeight renders the internal signed height back to its wire
// decimal form.
func FormatBlockHeight(h int64) string {
	return strconv.FormatUint(uint64(h), 10)
}

// ParseIndex parses a 32-bit non-negative index field (tx_index,
// input_index, output_index, receipt_index).
func ParseIndex(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindMalformedSubject, err, "invalid index")
	}
	if v < 0 {
		return 0, apperrors.New(apperrors.KindMalformedSubject, "index must be non-negative")
	}
	return int32(v), nil
}

// FormatIndex renders a 32-bit index back to its wire decimal form.
func FormatIndex(i int32) string {
	return strconv.FormatInt(int64(i), 10)
}
