package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestSubjectOfCallPopulatesCallRoles(t *testing.T) {
	item := Item{
		BlockHeight:    1,
		TxID:           "tx1",
		TxIndex:        0,
		ReceiptIndex:   0,
		ReceiptType:    Call,
		FromContractID: strp("from1"),
		ToContractID:   strp("to1"),
		AssetID:        strp("asset1"),
	}

	s := SubjectOf(item)
	assert.Equal(t, DefinitionID(Call), s.DefinitionID)
	from, ok := s.Get("from")
	require.True(t, ok)
	assert.Equal(t, "from1", from)
}

func TestSubjectOfMintPopulatesMintRoles(t *testing.T) {
	item := Item{
		BlockHeight:  1,
		TxID:         "tx1",
		TxIndex:      0,
		ReceiptIndex: 1,
		ReceiptType:  Mint,
		ContractID:   strp("c1"),
		SubID:        strp("sub1"),
	}

	s := SubjectOf(item)
	assert.Equal(t, DefinitionID(Mint), s.DefinitionID)
	contract, ok := s.Get("contract")
	require.True(t, ok)
	assert.Equal(t, "c1", contract)
	sub, ok := s.Get("sub_id")
	require.True(t, ok)
	assert.Equal(t, "sub1", sub)
	_, hasFrom := s.Get("from")
	assert.False(t, hasFrom)
}

func TestDefinitionsRouteCallAndMintToDistinctCustomWhere(t *testing.T) {
	defs := Definitions()

	var callWhere, mintWhere interface{}
	for _, d := range defs {
		switch d.ID {
		case DefinitionID(Call):
			callWhere = d.CustomWhere
		case DefinitionID(Mint):
			mintWhere = d.CustomWhere
		}
	}

	require.NotNil(t, callWhere)
	require.NotNil(t, mintWhere)
	assert.NotEqual(t, callWhere, mintWhere)
}

func TestInsertValuesLeavesOtherVariantRolesNil(t *testing.T) {
	callItem := Item{
		ReceiptType:    Call,
		FromContractID: strp("from1"),
		ToContractID:   strp("to1"),
		AssetID:        strp("asset1"),
	}
	values := Entity{}.InsertValues(callItem)
	columns := Entity{}.InsertColumns()

	byCol := make(map[string]interface{}, len(columns))
	for i, c := range columns {
		byCol[c] = values[i]
	}

	assert.Equal(t, strp("from1"), byCol["from_contract_id"])
	assert.Nil(t, byCol["contract_id"])
	assert.Nil(t, byCol["sub_id"])
}

func TestInsertValuesMintLeavesCallRolesNil(t *testing.T) {
	mintItem := Item{
		ReceiptType: Mint,
		ContractID:  strp("c1"),
		SubID:       strp("sub1"),
	}
	values := Entity{}.InsertValues(mintItem)
	columns := Entity{}.InsertColumns()

	byCol := make(map[string]interface{}, len(columns))
	for i, c := range columns {
		byCol[c] = values[i]
	}

	assert.Equal(t, strp("c1"), byCol["contract_id"])
	assert.Equal(t, strp("sub1"), byCol["sub_id"])
	assert.Nil(t, byCol["from_contract_id"])
}

func TestAddressRolesNarrowsPerVariant(t *testing.T) {
	call := Call
	assert.Equal(t, []string{"to_address", "asset_id"}, addressRoles(&call))

	out := TransferOut
	assert.Equal(t, []string{"to_address", "asset_id"}, addressRoles(&out))

	assert.Len(t, addressRoles(nil), 5)
	assert.Contains(t, addressRoles(nil), "to_address")
}
