package sqlstore

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// applyPagination implements spec §4.C's ordering and pagination
// contracts: when a cursor bound is set, it dominates — the query's
// direction is forced to the cursor's natural direction and OrderBy is
// ignored; otherwise limit/offset and OrderBy apply as given.
//
// Cursor comparisons use Postgres row-wise comparison, `(a,b,c) > (x,y,z)`,
// which is exactly the lexicographic tuple order spec §9 calls for —
// avoiding any need to zero-pad or string-encode the tuple for sorting.
func applyPagination(qb sq.SelectBuilder, cursorCols []string, p PaginationParams) sq.SelectBuilder {
	switch {
	case p.After != nil:
		qb = qb.Where(rowTuple(cursorCols, ">", p.After.Parts))
		qb = qb.OrderBy(orderClauses(cursorCols, Asc)...)
		if p.First != nil {
			qb = qb.Limit(uint64(*p.First))
		}
		return qb
	case p.Before != nil:
		qb = qb.Where(rowTuple(cursorCols, "<", p.Before.Parts))
		qb = qb.OrderBy(orderClauses(cursorCols, Desc)...)
		if p.Last != nil {
			qb = qb.Limit(uint64(*p.Last))
		}
		return qb
	}

	qb = qb.OrderBy(orderClauses(cursorCols, p.OrderBy)...)
	if p.Limit != nil {
		qb = qb.Limit(uint64(*p.Limit))
	}
	if p.Offset != nil {
		qb = qb.Offset(uint64(*p.Offset))
	}
	return qb
}

func orderClauses(cols []string, dir OrderBy) []string {
	suffix := "ASC"
	if dir == Desc {
		suffix = "DESC"
	}
	clauses := make([]string, len(cols))
	for i, c := range cols {
		clauses[i] = c + " " + suffix
	}
	return clauses
}

func rowTuple(cols []string, cmp string, parts []int64) sq.Sqlizer {
	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i := range cols {
		placeholders[i] = "?"
		args[i] = parts[i]
	}
	expr := "(" + strings.Join(cols, ", ") + ") " + cmp + " (" + strings.Join(placeholders, ", ") + ")"
	return sq.Expr(expr, args...)
}
