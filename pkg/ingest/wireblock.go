package ingest

// WireBlock is the decoded shape of a blocksource.RawBlock's Body: the
// DataParser decodes the node's wire bytes into this struct, and
// Packetize walks it exactly once per spec §4.F's PersistAll, emitting
// one RecordPacket per block/tx/input/output/receipt/utxo/predicate.
//
// Field names mirror each entity package's Item so translation is a
// straight copy rather than a second naming scheme to keep in sync.
type WireBlock struct {
	Producer     string
	Hash         string
	Version      string
	Tai64Time    uint64
	Transactions []WireTransaction
}

type WireTransaction struct {
	TxID     string
	TxStatus string
	TxType   string
	BlobID   *string
	Inputs   []WireInput
	Outputs  []WireOutput
	Receipts []WireReceipt
	Utxos    []WireUtxo
}

type WireInput struct {
	InputType        string // "coin" | "contract" | "message"
	OwnerID          *string
	AssetID          *string
	ContractID       *string
	SenderAddress    *string
	RecipientAddress *string

	// Predicate is set when this input carries predicate bytecode (spec
	// §3.1 Predicate "Many-to-many with transactions (inputs carrying
	// predicate bytecode)"); nil for inputs without a predicate.
	Predicate *WirePredicate
}

type WirePredicate struct {
	BlobID           string
	PredicateAddress string
}

type WireOutput struct {
	OutputType string // "coin" | "contract" | "change" | "variable" | "contract_created"
	ToAddress  *string
	AssetID    *string
	ContractID *string
}

type WireReceipt struct {
	ReceiptType      string
	FromContractID   *string
	ToContractID     *string
	ToAddress        *string
	AssetID          *string
	ContractID       *string
	SubID            *string
	SenderAddress    *string
	RecipientAddress *string
	Amount           *int64
	Gas              *int64
	Param1           *int64
	Param2           *int64
}

type WireUtxo struct {
	UtxoType   string // "coin" | "contract" | "message"
	UtxoID     string
	ContractID *string
}
