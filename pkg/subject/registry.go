package subject

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// Registry is the process-wide, immutable table of known subject
// Definitions. Constructed once at startup (spec §9: "global state ...
// injected as immutable references") from every domain package's
// Definitions() function.
type Registry struct {
	byID []Definition
}

// NewRegistry builds a Registry from the given definitions, ordered most
// specific first (longest literal prefix wins ties, per spec §4.A).
func NewRegistry(defs ...Definition) *Registry {
	sorted := make([]Definition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Segments) != len(sorted[j].Segments) {
			return len(sorted[i].Segments) > len(sorted[j].Segments)
		}
		return len(sorted[i].LiteralPrefix()) > len(sorted[j].LiteralPrefix())
	})
	return &Registry{byID: sorted}
}

// Definition returns the Definition for a given id, or false if unknown.
func (r *Registry) Definition(id string) (Definition, bool) {
	for _, d := range r.byID {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// WildcardOf returns the wildcard subject string for a known id (spec
// §4.A op 4), e.g. WildcardOf("receipts_call") == "receipts.call.>".
func (r *Registry) WildcardOf(id string) (string, bool) {
	d, ok := r.Definition(id)
	if !ok {
		return "", false
	}
	return d.WildcardForm(), true
}

// Parse splits a subject string on "." and matches it against known
// templates, binding placeholders. "*" means the field is present in the
// template but left unconstrained; a trailing ">" matches any
// continuation, leaving every remaining field unconstrained. When several
// definitions could match, the most specific one wins (fewest segments of
// slack — in practice, the longest template, since NewRegistry pre-sorts
// that way and Parse returns the first match).
//
// The leading token is treated as a namespace prefix when it does not
// match any known entity's first literal segment; this implements the
// "namespace optional, prefix" rule of spec §3.1/§6.1 without requiring
// the caller to separately supply or strip it.
func (r *Registry) Parse(raw string) (Subject, error) {
	tokens := strings.Split(raw, ".")
	if len(tokens) == 0 || tokens[0] == "" {
		return Subject{}, apperrors.New(apperrors.KindMalformedSubject, "empty subject string")
	}

	if s, ok := r.tryParse("", tokens); ok {
		return s, nil
	}
	if len(tokens) > 1 {
		if s, ok := r.tryParse(tokens[0], tokens[1:]); ok {
			return s, nil
		}
	}
	return Subject{}, apperrors.New(apperrors.KindMalformedSubject, "unrecognized subject template: "+raw)
}

func (r *Registry) tryParse(namespace string, tokens []string) (Subject, bool) {
	for _, d := range r.byID {
		if fields, ok := matchTemplate(d, tokens); ok {
			return Subject{DefinitionID: d.ID, Namespace: namespace, Fields: fields}, true
		}
	}
	return Subject{}, false
}

// matchTemplate attempts to align tokens against a definition's segments.
func matchTemplate(d Definition, tokens []string) (map[string]string, bool) {
	fields := make(map[string]string)
	wildcardTail := len(tokens) > 0 && tokens[len(tokens)-1] == ">"

	if wildcardTail {
		body := tokens[:len(tokens)-1]
		if len(body) > len(d.Segments) {
			return nil, false
		}
		for i, tok := range body {
			seg := d.Segments[i]
			if !bindSegment(seg, tok, fields) {
				return nil, false
			}
		}
		// Every field segment beyond the supplied body is left unbound
		// (absent from fields), matching the spec's "rest unconstrained".
		return fields, true
	}

	if len(tokens) != len(d.Segments) {
		return nil, false
	}
	for i, tok := range tokens {
		if !bindSegment(d.Segments[i], tok, fields) {
			return nil, false
		}
	}
	return fields, true
}

func bindSegment(seg Segment, tok string, fields map[string]string) bool {
	if !seg.IsField {
		return tok == seg.Literal
	}
	if tok != "*" {
		fields[seg.Field] = tok
	}
	return true
}

// Format renders a Subject back to its dotted string form: bound fields
// render their value, unbound fields render "*", per spec §4.A op 2.
func (r *Registry) Format(s Subject) (string, error) {
	d, ok := r.Definition(s.DefinitionID)
	if !ok {
		return "", apperrors.New(apperrors.KindMalformedSubject, "unknown subject id: "+s.DefinitionID)
	}
	parts := make([]string, 0, len(d.Segments)+1)
	if s.Namespace != "" {
		parts = append(parts, s.Namespace)
	}
	for _, seg := range d.Segments {
		if !seg.IsField {
			parts = append(parts, seg.Literal)
			continue
		}
		if v, ok := s.Fields[seg.Field]; ok {
			parts = append(parts, v)
		} else {
			parts = append(parts, "*")
		}
	}
	return strings.Join(parts, "."), nil
}

// ToCondition builds the AND-conjunction of "column = value" for every
// bound field, plus the definition's custom where clause, per spec §4.A
// op 3. Returns nil, nil if the subject has no bound fields and no custom
// clause (i.e. it imposes no constraint).
func (r *Registry) ToCondition(s Subject) (sq.Sqlizer, error) {
	d, ok := r.Definition(s.DefinitionID)
	if !ok {
		return nil, apperrors.New(apperrors.KindMalformedSubject, "unknown subject id: "+s.DefinitionID)
	}
	and := sq.And{}
	for _, seg := range d.Segments {
		if !seg.IsField {
			continue
		}
		if v, ok := s.Fields[seg.Field]; ok {
			and = append(and, sq.Eq{seg.Column(): v})
		}
	}
	if d.CustomWhere != nil {
		and = append(and, d.CustomWhere)
	}
	if len(and) == 0 {
		return nil, nil
	}
	return and, nil
}

// MostSpecificMatch returns the definition that would match raw among a
// known candidate set, and false if none match. Exposed separately
// from Parse for callers (e.g. the WS engine) that need to resolve a
// wildcard to an entity without needing bound fields.
func (r *Registry) MostSpecificMatch(raw string) (Definition, bool) {
	s, err := r.Parse(raw)
	if err != nil {
		return Definition{}, false
	}
	return r.Definition(s.DefinitionID)
}
