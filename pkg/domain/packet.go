package domain

import (
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
	"github.com/fuel-streams/fuel-indexer/pkg/subject"
)

// RecordPacket is the unit flowing from ingest to persistence (spec §4.B).
// It carries the structured subject (not just its rendered string, so
// translation to a row never has to re-parse a lossy string) alongside the
// opaque encoded value and block context.
type RecordPacket struct {
	SubjectPayload subject.Subject
	SubjectStr     string
	Value          []byte
	BlockTimestamp BlockTimestamp
	Namespace      string
}

// NewRecordPacket is the subject-to-row translation's entry point (spec
// §4.B): a total switch over s's variant that requires every one of the
// variant's mandatory placeholders to be bound before the packet is
// accepted, failing SubjectMismatch otherwise, then renders subjectPayload
// through reg and assembles the packet.
func NewRecordPacket(
	reg *subject.Registry,
	s subject.Subject,
	value []byte,
	ts BlockTimestamp,
	namespace string,
) (RecordPacket, error) {
	s.Namespace = namespace

	def, ok := reg.Definition(s.DefinitionID)
	if !ok {
		return RecordPacket{}, apperrors.New(apperrors.KindMalformedSubject, "unknown subject id: "+s.DefinitionID)
	}
	for _, field := range def.RequiredFields() {
		if _, bound := s.Get(field); !bound {
			return RecordPacket{}, apperrors.New(apperrors.KindSubjectMismatch,
				"subject "+s.DefinitionID+" is missing mandatory field "+field)
		}
	}

	str, err := reg.Format(s)
	if err != nil {
		return RecordPacket{}, err
	}
	return RecordPacket{
		SubjectPayload: s,
		SubjectStr:     str,
		Value:          value,
		BlockTimestamp: ts,
		Namespace:      namespace,
	}, nil
}
