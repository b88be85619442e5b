// Package querybuilder holds the shared SQL-fragment helpers every
// entity's QueryParams.BuildWhere draws on: the namespace filter, the time
// filters, and the address "any-role" OR-clause expansion (spec §4.D).
// Every entity builds its WHERE clause with Masterminds/squirrel uniformly
// — this package is that single strategy's toolbox, not a second one.
package querybuilder

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Namespace appends a `subject LIKE '<ns>%'` condition (spec §4.D).
func Namespace(ns string) sq.Sqlizer {
	return NamespaceColumn("subject", ns)
}

// NamespaceColumn is Namespace generalized to an arbitrary column, for the
// predicate join where the subject column must be qualified (`pt.subject`).
func NamespaceColumn(column, ns string) sq.Sqlizer {
	if ns == "" {
		return nil
	}
	return sq.Like{column: ns + "%"}
}

// TimeRange is a half-open bucket, e.g. "last hour": [From, To).
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the range carries no bound.
func (t TimeRange) IsZero() bool { return t.From.IsZero() && t.To.IsZero() }

// Time builds the exact-timestamp and half-open time-range filters over a
// given column (spec §4.D "Time filters").
func Time(column string, exact *time.Time, tr *TimeRange) sq.Sqlizer {
	and := sq.And{}
	if exact != nil {
		and = append(and, sq.Eq{column: *exact})
	}
	if tr != nil && !tr.IsZero() {
		if !tr.From.IsZero() {
			and = append(and, sq.GtOrEq{column: tr.From})
		}
		if !tr.To.IsZero() {
			and = append(and, sq.Lt{column: tr.To})
		}
	}
	if len(and) == 0 {
		return nil
	}
	return and
}

// FromBlock builds a `block_height >= h` filter (spec §6.2 `from_block`).
func FromBlock(h *int64) sq.Sqlizer {
	if h == nil {
		return nil
	}
	return sq.GtOrEq{"block_height": *h}
}

// AddressAnyRole expands a generic `address` filter plus an optional
// variant discriminator into the role-specific OR clause spec §4.D
// describes: every column in roles that a matching variant could bind the
// address to. roles is supplied by the caller (the entity's own
// definition of which columns play which role for which variant), not
// hardcoded here, since the role-set differs per entity and per variant
// (spec: "fixed by the registry").
func AddressAnyRole(address string, roles []string) sq.Sqlizer {
	if address == "" || len(roles) == 0 {
		return nil
	}
	or := make(sq.Or, 0, len(roles))
	for _, col := range roles {
		or = append(or, sq.Eq{col: address})
	}
	return or
}

// And composes a slice of possibly-nil Sqlizers, dropping nils, and
// returns nil if nothing remains — the building block every entity's
// BuildWhere uses to AND-compose its filters (spec §4.D "All filters are
// AND-composed").
func And(parts ...sq.Sqlizer) sq.Sqlizer {
	and := sq.And{}
	for _, p := range parts {
		if p != nil {
			and = append(and, p)
		}
	}
	if len(and) == 0 {
		return nil
	}
	return and
}

// Eq builds a plain equality filter for an optional string field: nil when
// unset, matching every entity's "every Some field" AND-composition rule.
func Eq(column string, value *string) sq.Sqlizer {
	if value == nil {
		return nil
	}
	return sq.Eq{column: *value}
}

// EqInt64 is Eq for an optional 64-bit integer field.
func EqInt64(column string, value *int64) sq.Sqlizer {
	if value == nil {
		return nil
	}
	return sq.Eq{column: *value}
}

// EqInt32 is Eq for an optional 32-bit integer field (tx_index and
// friends).
func EqInt32(column string, value *int32) sq.Sqlizer {
	if value == nil {
		return nil
	}
	return sq.Eq{column: *value}
}

// StaticWhere wraps a raw SQL fragment with no bind parameters, for a
// definition's custom_where discriminator (e.g. `receipt_type = 'call'`).
func StaticWhere(expr string) sq.Sqlizer {
	return sq.Expr(expr)
}

// PredicateJoin builds the two-table join spec §4.D describes for
// predicate queries: `predicate_transactions` joined to `predicates` on
// `predicates.id = predicate_transactions.predicate_id`, paginated on
// `predicate_transactions.block_height`.
func PredicateJoin(qb sq.SelectBuilder) sq.SelectBuilder {
	return qb.
		From("predicate_transactions pt").
		Join("predicates p ON p.id = pt.predicate_id")
}
