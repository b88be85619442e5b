// Package subject implements the hierarchical subject taxonomy described in
// spec §4.A: the dotted-string grammar every event is named with, and the
// bidirectional mapping between a typed Subject and the SQL it selects.
//
// The registry is a declarative table of Definitions (one per subject id,
// e.g. "receipts_call") rather than a switch statement replicated across
// parse/format/condition — see spec §9's design note on keeping the
// discriminator in one place.
package subject

import "fmt"

// Subject is a typed value describing a class of events: which Definition
// it belongs to, an optional namespace prefix, and the bound field values
// (a field absent from Fields means "unconstrained", rendered as "*").
type Subject struct {
	DefinitionID string
	Namespace    string
	Fields       map[string]string
}

// String renders the subject's id, namespace and bound fields for logs and
// debugging; it is not the dotted wire form (see Registry.Format).
func (s Subject) String() string {
	return fmt.Sprintf("Subject{id=%s ns=%q fields=%v}", s.DefinitionID, s.Namespace, s.Fields)
}

// Get returns the bound value for field, and whether it was bound at all.
func (s Subject) Get(field string) (string, bool) {
	v, ok := s.Fields[field]
	return v, ok
}

// With returns a copy of the subject with field bound to value. Used by
// callers building a subject programmatically (e.g. the ingest pipeline)
// rather than parsing a wire string.
func (s Subject) With(field, value string) Subject {
	fields := make(map[string]string, len(s.Fields)+1)
	for k, v := range s.Fields {
		fields[k] = v
	}
	fields[field] = value
	return Subject{DefinitionID: s.DefinitionID, Namespace: s.Namespace, Fields: fields}
}
