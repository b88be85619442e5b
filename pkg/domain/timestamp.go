package domain

import "time"

// tai64Epoch is the offset TAI64 labels are biased by: seconds since
// 1970-01-01 TAI, biased by 2^62 so every representable value is positive.
// Grounded on _examples/original_source/.../block_timestamp.rs, which
// performs the same conversion for Fuel block headers.
const tai64Epoch = int64(1) << 62

// BlockTimestamp is the authoritative timestamp carried from a block
// header (spec §4.B). Fuel block headers encode time as TAI64 seconds;
// this type normalizes that (or a plain Unix value, for block sources that
// already hand back civil time) into a UTC time.Time.
type BlockTimestamp struct {
	t time.Time
}

// NewBlockTimestamp wraps an already-resolved time.
func NewBlockTimestamp(t time.Time) BlockTimestamp {
	return BlockTimestamp{t: t.UTC()}
}

// FromUnixSeconds builds a BlockTimestamp from a Unix epoch second count.
func FromUnixSeconds(sec int64) BlockTimestamp {
	return BlockTimestamp{t: time.Unix(sec, 0).UTC()}
}

// FromTai64 builds a BlockTimestamp from a raw TAI64 label as carried on
// Fuel block headers.
func FromTai64(label uint64) BlockTimestamp {
	return FromUnixSeconds(int64(label) - tai64Epoch)
}

// Time returns the UTC time.Time value.
func (b BlockTimestamp) Time() time.Time { return b.t }

// UnixSeconds returns the Unix epoch second count, for storage in a
// timestamptz column via the driver's native time.Time binding.
func (b BlockTimestamp) UnixSeconds() int64 { return b.t.Unix() }

// IsZero reports whether the timestamp was never set.
func (b BlockTimestamp) IsZero() bool { return b.t.IsZero() }
