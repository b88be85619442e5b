package ingest

import (
	"context"
	"time"

	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/block"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/input"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/output"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/predicate"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/receipt"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/transaction"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/utxo"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore"
	"github.com/fuel-streams/fuel-indexer/pkg/subject"
)

// emitted is one persisted record's rendered subject and encoded value,
// ready for Broker.PublishEvent (spec §4.F "Publish").
type emitted struct {
	subject string
	value   []byte
}

// persistBlock inserts the block header row and returns its emission.
func (p *Pipeline) persistBlock(ctx context.Context, exec sqlstore.Executor, height int64, wb WireBlock, ts domain.BlockTimestamp) (emitted, error) {
	now := time.Now().UTC()
	item := block.Item{
		BlockHeight: height,
		Producer:    wb.Producer,
		Hash:        wb.Hash,
		Version:     wb.Version,
		CreatedAt:   now,
		PublishedAt: now,
		BlockTime:   ts.Time(),
	}
	s := block.SubjectOf(item)
	str, val, err := p.renderAndEncode(s, item, ts)
	if err != nil {
		return emitted{}, err
	}
	item.Subject = str
	item.Value = val
	if _, err := p.repos.Blocks.WithExecutor(exec).Insert(ctx, item); err != nil {
		return emitted{}, err
	}
	return emitted{subject: str, value: val}, nil
}

// persistTransaction inserts a transaction row and every child record it
// carries (inputs, outputs, receipts, utxos, predicates), in the
// deterministic order spec §5 requires (tx → inputs → outputs → receipts
// → utxos).
func (p *Pipeline) persistTransaction(
	ctx context.Context,
	exec sqlstore.Executor,
	height int64,
	txIndex int32,
	wtx WireTransaction,
	now time.Time,
	ts domain.BlockTimestamp,
) ([]emitted, error) {
	var out []emitted

	txItem := transaction.Item{
		BlockHeight: height,
		TxID:        wtx.TxID,
		TxIndex:     txIndex,
		TxStatus:    wtx.TxStatus,
		TxType:      wtx.TxType,
		BlobID:      wtx.BlobID,
		CreatedAt:   now,
		PublishedAt: now,
	}
	str, val, err := p.renderAndEncode(transaction.SubjectOf(txItem), txItem, ts)
	if err != nil {
		return nil, err
	}
	txItem.Subject, txItem.Value = str, val
	if _, err := p.repos.Transactions.WithExecutor(exec).Insert(ctx, txItem); err != nil {
		return nil, err
	}
	out = append(out, emitted{subject: str, value: val})

	for i, wi := range wtx.Inputs {
		e, err := p.persistInput(ctx, exec, height, wtx.TxID, txIndex, int32(i), wi, now, ts)
		if err != nil {
			return nil, err
		}
		out = append(out, e...)
	}
	for i, wo := range wtx.Outputs {
		e, err := p.persistOutput(ctx, exec, height, wtx.TxID, txIndex, int32(i), wo, now, ts)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	for i, wr := range wtx.Receipts {
		e, err := p.persistReceipt(ctx, exec, height, wtx.TxID, txIndex, int32(i), wr, now, ts)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	for i, wu := range wtx.Utxos {
		e, err := p.persistUtxo(ctx, exec, height, wtx.TxID, txIndex, int32(i), wu, now, ts)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

func (p *Pipeline) persistInput(
	ctx context.Context, exec sqlstore.Executor,
	height int64, txID string, txIndex, inputIndex int32, wi WireInput, now time.Time, ts domain.BlockTimestamp,
) ([]emitted, error) {
	item := input.Item{
		BlockHeight:      height,
		TxID:             txID,
		TxIndex:          txIndex,
		InputIndex:       inputIndex,
		InputType:        input.Variant(wi.InputType),
		OwnerID:          wi.OwnerID,
		AssetID:          wi.AssetID,
		ContractID:       wi.ContractID,
		SenderAddress:    wi.SenderAddress,
		RecipientAddress: wi.RecipientAddress,
		CreatedAt:        now,
		PublishedAt:      now,
	}
	str, val, err := p.renderAndEncode(input.SubjectOf(item), item, ts)
	if err != nil {
		return nil, err
	}
	item.Subject, item.Value = str, val
	if _, err := p.repos.Inputs.WithExecutor(exec).Insert(ctx, item); err != nil {
		return nil, err
	}
	out := []emitted{{subject: str, value: val}}

	if wi.Predicate != nil {
		e, err := p.persistPredicate(ctx, exec, height, txID, txIndex, inputIndex, *wi.Predicate, now, ts)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p *Pipeline) persistPredicate(
	ctx context.Context, exec sqlstore.Executor,
	height int64, txID string, txIndex, inputIndex int32, wp WirePredicate, now time.Time, ts domain.BlockTimestamp,
) (emitted, error) {
	item := predicate.Item{
		BlockHeight:      height,
		TxID:             txID,
		TxIndex:          txIndex,
		InputIndex:       inputIndex,
		BlobID:           wp.BlobID,
		PredicateAddress: wp.PredicateAddress,
		CreatedAt:        now,
		PublishedAt:      now,
	}
	str, val, err := p.renderAndEncode(predicate.SubjectOf(item), item, ts)
	if err != nil {
		return emitted{}, err
	}
	item.Subject, item.Value = str, val
	if _, err := p.repos.Predicates.WithExecutor(exec).Insert(ctx, item); err != nil {
		return emitted{}, err
	}
	return emitted{subject: str, value: val}, nil
}

func (p *Pipeline) persistOutput(
	ctx context.Context, exec sqlstore.Executor,
	height int64, txID string, txIndex, outputIndex int32, wo WireOutput, now time.Time, ts domain.BlockTimestamp,
) (emitted, error) {
	item := output.Item{
		BlockHeight: height,
		TxID:        txID,
		TxIndex:     txIndex,
		OutputIndex: outputIndex,
		OutputType:  output.Variant(wo.OutputType),
		ToAddress:   wo.ToAddress,
		AssetID:     wo.AssetID,
		ContractID:  wo.ContractID,
		CreatedAt:   now,
		PublishedAt: now,
	}
	str, val, err := p.renderAndEncode(output.SubjectOf(item), item, ts)
	if err != nil {
		return emitted{}, err
	}
	item.Subject, item.Value = str, val
	if _, err := p.repos.Outputs.WithExecutor(exec).Insert(ctx, item); err != nil {
		return emitted{}, err
	}
	return emitted{subject: str, value: val}, nil
}

func (p *Pipeline) persistReceipt(
	ctx context.Context, exec sqlstore.Executor,
	height int64, txID string, txIndex, receiptIndex int32, wr WireReceipt, now time.Time, ts domain.BlockTimestamp,
) (emitted, error) {
	item := receipt.Item{
		BlockHeight:      height,
		TxID:             txID,
		TxIndex:          txIndex,
		ReceiptIndex:     receiptIndex,
		ReceiptType:      receipt.Variant(wr.ReceiptType),
		FromContractID:   wr.FromContractID,
		ToContractID:     wr.ToContractID,
		ToAddress:        wr.ToAddress,
		AssetID:          wr.AssetID,
		ContractID:       wr.ContractID,
		SubID:            wr.SubID,
		SenderAddress:    wr.SenderAddress,
		RecipientAddress: wr.RecipientAddress,
		Amount:           wr.Amount,
		Gas:              wr.Gas,
		Param1:           wr.Param1,
		Param2:           wr.Param2,
		CreatedAt:        now,
		PublishedAt:      now,
	}
	str, val, err := p.renderAndEncode(receipt.SubjectOf(item), item, ts)
	if err != nil {
		return emitted{}, err
	}
	item.Subject, item.Value = str, val
	if _, err := p.repos.Receipts.WithExecutor(exec).Insert(ctx, item); err != nil {
		return emitted{}, err
	}
	return emitted{subject: str, value: val}, nil
}

func (p *Pipeline) persistUtxo(
	ctx context.Context, exec sqlstore.Executor,
	height int64, txID string, txIndex, inputIndex int32, wu WireUtxo, now time.Time, ts domain.BlockTimestamp,
) (emitted, error) {
	item := utxo.Item{
		BlockHeight: height,
		TxID:        txID,
		TxIndex:     txIndex,
		InputIndex:  inputIndex,
		UtxoType:    utxo.Variant(wu.UtxoType),
		UtxoID:      wu.UtxoID,
		ContractID:  wu.ContractID,
		CreatedAt:   now,
		PublishedAt: now,
	}
	str, val, err := p.renderAndEncode(utxo.SubjectOf(item), item, ts)
	if err != nil {
		return emitted{}, err
	}
	item.Subject, item.Value = str, val
	if _, err := p.repos.UTXOs.WithExecutor(exec).Insert(ctx, item); err != nil {
		return emitted{}, err
	}
	return emitted{subject: str, value: val}, nil
}

// renderAndEncode encodes payload through the configured DataParser, then
// runs the resulting value through the subject-to-row packet contract
// (spec §4.B): NewRecordPacket requires every one of s's mandatory
// placeholders to be bound, failing SubjectMismatch otherwise, before
// rendering s to its wire form.
func (p *Pipeline) renderAndEncode(s subject.Subject, payload interface{}, ts domain.BlockTimestamp) (string, []byte, error) {
	val, err := p.parser.Encode(payload)
	if err != nil {
		return "", nil, err
	}
	pkt, err := domain.NewRecordPacket(p.registry, s, val, ts, p.cfg.Namespace)
	if err != nil {
		return "", nil, err
	}
	return pkt.SubjectStr, pkt.Value, nil
}
