package subject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewRegistry(
		Definition{
			ID:     "blocks",
			Entity: "blocks",
			Segments: []Segment{
				Lit("blocks"), Fld("block_height", "block_height"),
			},
		},
		Definition{
			ID:     "receipts_call",
			Entity: "receipts",
			Segments: []Segment{
				Lit("receipts"), Lit("call"),
				Fld("tx_id", "tx_id"), Fld("from", "from_contract_id"),
			},
		},
		Definition{
			ID:     "receipts",
			Entity: "receipts",
			Segments: []Segment{
				Lit("receipts"), Fld("receipt_type", "receipt_type"),
			},
		},
	)
}

func TestParseFormatRoundTripFullyBound(t *testing.T) {
	r := testRegistry()

	s, err := r.Parse("blocks.42")
	require.NoError(t, err)
	assert.Equal(t, "blocks", s.DefinitionID)

	out, err := r.Format(s)
	require.NoError(t, err)
	assert.Equal(t, "blocks.42", out)
}

func TestParseFormatRoundTripWithNamespacePrefix(t *testing.T) {
	r := testRegistry()

	s, err := r.Parse("ns1.blocks.42")
	require.NoError(t, err)
	assert.Equal(t, "ns1", s.Namespace)
	h, ok := s.Get("block_height")
	require.True(t, ok)
	assert.Equal(t, "42", h)

	out, err := r.Format(s)
	require.NoError(t, err)
	assert.Equal(t, "ns1.blocks.42", out)
}

func TestParsePicksMostSpecificDefinition(t *testing.T) {
	r := testRegistry()

	s, err := r.Parse("receipts.call.tx1.from1")
	require.NoError(t, err)
	assert.Equal(t, "receipts_call", s.DefinitionID)
}

func TestParseUnboundFieldFormatsAsStar(t *testing.T) {
	r := testRegistry()

	s, err := r.Parse("blocks.>")
	require.NoError(t, err)
	_, bound := s.Get("block_height")
	assert.False(t, bound)

	out, err := r.Format(s)
	require.NoError(t, err)
	assert.Equal(t, "blocks.*", out)
}

func TestParseRejectsUnrecognizedSubject(t *testing.T) {
	r := testRegistry()
	_, err := r.Parse("nonsense.subject.string")
	assert.Error(t, err)
}

func TestParseRejectsEmptyString(t *testing.T) {
	r := testRegistry()
	_, err := r.Parse("")
	assert.Error(t, err)
}

func TestWildcardOfKnownID(t *testing.T) {
	r := testRegistry()
	w, ok := r.WildcardOf("receipts_call")
	require.True(t, ok)
	assert.Equal(t, "receipts.call.>", w)
}

func TestToConditionBindsOnlyBoundFields(t *testing.T) {
	r := testRegistry()

	s, err := r.Parse("blocks.42")
	require.NoError(t, err)

	cond, err := r.ToCondition(s)
	require.NoError(t, err)
	require.NotNil(t, cond)
}

func TestToConditionNilWhenNoConstraint(t *testing.T) {
	r := testRegistry()

	s, err := r.Parse("blocks.>")
	require.NoError(t, err)

	cond, err := r.ToCondition(s)
	require.NoError(t, err)
	assert.Nil(t, cond)
}
