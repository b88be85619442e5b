package subject

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Segment is one dotted component of a subject template: either a literal
// (e.g. "receipts", "call") or a field placeholder (e.g. "{block_height}").
type Segment struct {
	Literal string
	Field   string
	IsField bool
}

// Lit builds a literal segment.
func Lit(s string) Segment { return Segment{Literal: s} }

// Fld builds a field-placeholder segment. column defaults to name when
// empty (spec §4.A: "per-field SQL column name, defaults to the field
// name").
func Fld(name, column string) Segment {
	if column == "" {
		column = name
	}
	return Segment{Field: name, IsField: true, Literal: column}
}

// Column returns the SQL column name bound to a field segment.
func (s Segment) Column() string { return s.Literal }

// Definition describes one subject kind: its template, its entity family,
// per-field column bindings, and any static where-clause that always
// applies when this kind participates in a query (e.g. a receipt-type
// discriminator).
type Definition struct {
	ID          string
	Entity      string
	Segments    []Segment
	CustomWhere sq.Sqlizer // nil if none
}

// LiteralPrefix returns the definition's leading literal segments joined by
// dots, e.g. "receipts.call" for the ReceiptsCall definition. Used to build
// the wildcard form and as the specificity score during parsing.
func (d Definition) LiteralPrefix() string {
	var lits []string
	for _, seg := range d.Segments {
		if seg.IsField {
			break
		}
		lits = append(lits, seg.Literal)
	}
	return strings.Join(lits, ".")
}

// WildcardForm renders the definition's broadest selector: its literal
// prefix followed by ".>" (spec §4.A's wildcard_of).
func (d Definition) WildcardForm() string {
	prefix := d.LiteralPrefix()
	if prefix == "" {
		return ">"
	}
	return prefix + ".>"
}

// fieldNames returns, in template order, the names of every field segment.
func (d Definition) fieldNames() []string {
	var names []string
	for _, seg := range d.Segments {
		if seg.IsField {
			names = append(names, seg.Field)
		}
	}
	return names
}

// RequiredFields returns, in template order, the name of every field
// segment a fully-bound instance of this definition must supply. Used by
// the subject-to-row translation (spec §4.B) to detect a variant that's
// missing one of its mandatory placeholders.
func (d Definition) RequiredFields() []string {
	return d.fieldNames()
}

// columnFor returns the SQL column bound to a field name, or "" if the
// definition has no such field.
func (d Definition) columnFor(field string) string {
	for _, seg := range d.Segments {
		if seg.IsField && seg.Field == field {
			return seg.Column()
		}
	}
	return ""
}
