package httpapi

import (
	"net/url"

	"github.com/fuel-streams/fuel-indexer/pkg/domain/block"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/input"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/output"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/predicate"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/receipt"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/transaction"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/utxo"
)

// Each *Params function below translates the tolerant query string into
// one entity's typed QueryParams (spec §4.D's filter fields, spec §6.2's
// wire names). from_block and namespace are common to every entity.

func blockParams(v url.Values) (block.QueryParams, error) {
	height, err := int64Param(v, "block_height")
	if err != nil {
		return block.QueryParams{}, err
	}
	fromBlock, err := int64Param(v, "from_block")
	if err != nil {
		return block.QueryParams{}, err
	}
	timestamp, err := timeParam(v, "timestamp")
	if err != nil {
		return block.QueryParams{}, err
	}
	timeRange, err := timeRangeParam(v, "time_range")
	if err != nil {
		return block.QueryParams{}, err
	}
	return block.QueryParams{
		BlockHeight: height,
		Producer:    stringParam(v, "producer"),
		FromBlock:   fromBlock,
		Timestamp:   timestamp,
		TimeRange:   timeRange,
		Namespace:   namespaceParam(v),
	}, nil
}

func transactionParams(v url.Values) (transaction.QueryParams, error) {
	height, err := int64Param(v, "block_height")
	if err != nil {
		return transaction.QueryParams{}, err
	}
	txIndex, err := int32Param(v, "tx_index")
	if err != nil {
		return transaction.QueryParams{}, err
	}
	fromBlock, err := int64Param(v, "from_block")
	if err != nil {
		return transaction.QueryParams{}, err
	}
	timestamp, err := timeParam(v, "timestamp")
	if err != nil {
		return transaction.QueryParams{}, err
	}
	timeRange, err := timeRangeParam(v, "time_range")
	if err != nil {
		return transaction.QueryParams{}, err
	}
	return transaction.QueryParams{
		BlockHeight: height,
		TxID:        stringParam(v, "tx_id"),
		TxIndex:     txIndex,
		TxStatus:    stringParam(v, "tx_status"),
		TxType:      stringParam(v, "tx_type"),
		FromBlock:   fromBlock,
		Timestamp:   timestamp,
		TimeRange:   timeRange,
		Namespace:   namespaceParam(v),
	}, nil
}

func inputParams(v url.Values) (input.QueryParams, error) {
	height, err := int64Param(v, "block_height")
	if err != nil {
		return input.QueryParams{}, err
	}
	txIndex, err := int32Param(v, "tx_index")
	if err != nil {
		return input.QueryParams{}, err
	}
	inputIndex, err := int32Param(v, "input_index")
	if err != nil {
		return input.QueryParams{}, err
	}
	fromBlock, err := int64Param(v, "from_block")
	if err != nil {
		return input.QueryParams{}, err
	}
	var variant *input.Variant
	if s := get(v, "input_type"); s != "" {
		iv := input.Variant(s)
		variant = &iv
	}
	return input.QueryParams{
		BlockHeight:      height,
		TxID:             stringParam(v, "tx_id"),
		TxIndex:          txIndex,
		InputIndex:       inputIndex,
		InputType:        variant,
		OwnerID:          stringParam(v, "owner_id"),
		AssetID:          stringParam(v, "asset_id"),
		ContractID:       stringParam(v, "contract_id"),
		SenderAddress:    stringParam(v, "sender_address"),
		RecipientAddress: stringParam(v, "recipient_address"),
		Address:          stringParam(v, "address"),
		FromBlock:        fromBlock,
		Namespace:        namespaceParam(v),
	}, nil
}

func outputParams(v url.Values) (output.QueryParams, error) {
	height, err := int64Param(v, "block_height")
	if err != nil {
		return output.QueryParams{}, err
	}
	txIndex, err := int32Param(v, "tx_index")
	if err != nil {
		return output.QueryParams{}, err
	}
	outputIndex, err := int32Param(v, "output_index")
	if err != nil {
		return output.QueryParams{}, err
	}
	fromBlock, err := int64Param(v, "from_block")
	if err != nil {
		return output.QueryParams{}, err
	}
	var variant *output.Variant
	if s := get(v, "output_type"); s != "" {
		ov := output.Variant(s)
		variant = &ov
	}
	return output.QueryParams{
		BlockHeight: height,
		TxID:        stringParam(v, "tx_id"),
		TxIndex:     txIndex,
		OutputIndex: outputIndex,
		OutputType:  variant,
		ToAddress:   stringParam(v, "to_address"),
		AssetID:     stringParam(v, "asset_id"),
		ContractID:  stringParam(v, "contract_id"),
		Address:     stringParam(v, "address"),
		FromBlock:   fromBlock,
		Namespace:   namespaceParam(v),
	}, nil
}

func receiptParams(v url.Values) (receipt.QueryParams, error) {
	height, err := int64Param(v, "block_height")
	if err != nil {
		return receipt.QueryParams{}, err
	}
	txIndex, err := int32Param(v, "tx_index")
	if err != nil {
		return receipt.QueryParams{}, err
	}
	receiptIndex, err := int32Param(v, "receipt_index")
	if err != nil {
		return receipt.QueryParams{}, err
	}
	fromBlock, err := int64Param(v, "from_block")
	if err != nil {
		return receipt.QueryParams{}, err
	}
	var variant *receipt.Variant
	if s := get(v, "receipt_type"); s != "" {
		rv := receipt.Variant(s)
		variant = &rv
	}
	return receipt.QueryParams{
		BlockHeight:      height,
		TxID:             stringParam(v, "tx_id"),
		TxIndex:          txIndex,
		ReceiptIndex:     receiptIndex,
		ReceiptType:      variant,
		FromContractID:   stringParam(v, "from_contract_id"),
		ToContractID:     stringParam(v, "to_contract_id"),
		ToAddress:        stringParam(v, "to_address"),
		AssetID:          stringParam(v, "asset_id"),
		ContractID:       stringParam(v, "contract_id"),
		SubID:            stringParam(v, "sub_id"),
		SenderAddress:    stringParam(v, "sender_address"),
		RecipientAddress: stringParam(v, "recipient_address"),
		Address:          stringParam(v, "address"),
		FromBlock:        fromBlock,
		Namespace:        namespaceParam(v),
	}, nil
}

func utxoParams(v url.Values) (utxo.QueryParams, error) {
	height, err := int64Param(v, "block_height")
	if err != nil {
		return utxo.QueryParams{}, err
	}
	txIndex, err := int32Param(v, "tx_index")
	if err != nil {
		return utxo.QueryParams{}, err
	}
	inputIndex, err := int32Param(v, "input_index")
	if err != nil {
		return utxo.QueryParams{}, err
	}
	fromBlock, err := int64Param(v, "from_block")
	if err != nil {
		return utxo.QueryParams{}, err
	}
	var variant *utxo.Variant
	if s := get(v, "utxo_type"); s != "" {
		uv := utxo.Variant(s)
		variant = &uv
	}
	return utxo.QueryParams{
		BlockHeight: height,
		TxID:        stringParam(v, "tx_id"),
		TxIndex:     txIndex,
		InputIndex:  inputIndex,
		UtxoType:    variant,
		UtxoID:      stringParam(v, "utxo_id"),
		ContractID:  stringParam(v, "contract_id"),
		Address:     stringParam(v, "address"),
		FromBlock:   fromBlock,
		Namespace:   namespaceParam(v),
	}, nil
}

func predicateParams(v url.Values) (predicate.QueryParams, error) {
	height, err := int64Param(v, "block_height")
	if err != nil {
		return predicate.QueryParams{}, err
	}
	txIndex, err := int32Param(v, "tx_index")
	if err != nil {
		return predicate.QueryParams{}, err
	}
	inputIndex, err := int32Param(v, "input_index")
	if err != nil {
		return predicate.QueryParams{}, err
	}
	fromBlock, err := int64Param(v, "from_block")
	if err != nil {
		return predicate.QueryParams{}, err
	}
	return predicate.QueryParams{
		BlockHeight:      height,
		TxID:             stringParam(v, "tx_id"),
		TxIndex:          txIndex,
		InputIndex:       inputIndex,
		BlobID:           stringParam(v, "blob_id"),
		PredicateAddress: stringParam(v, "predicate_address"),
		FromBlock:        fromBlock,
		Namespace:        namespaceParam(v),
	}, nil
}
