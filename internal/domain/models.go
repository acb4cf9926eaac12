package domain

import "time"

// Payroll transaction lifecycle states.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// PayrollItem is one recipient of a payroll run: a destination address
// and an amount in lovelace.
type PayrollItem struct {
	Address  string `json:"address"`
	Lovelace int64  `json:"lovelace"`
}

// PayrollRequest is the DTO for POST /build_and_submit_tx.
type PayrollRequest struct {
	SenderAddress string        `json:"sender_address"`
	Payroll       []PayrollItem `json:"payroll"`
}

// AssetAmount is one asset entry of an explorer UTXO. The lovelace
// entry always comes first; Quantity is a decimal string in the
// explorer schema.
type AssetAmount struct {
	Unit     string
	Quantity string
}

// SpendableOutput is a UTXO as reported by the explorer: a reference to
// the source transaction plus its asset amounts.
type SpendableOutput struct {
	TxHash      string
	OutputIndex int
	Amount      []AssetAmount
}

// TxInfo is the explorer's view of a confirmed transaction.
type TxInfo struct {
	Hash        string
	BlockHash   string
	BlockHeight int64
	BlockTime   time.Time
}

// PayrollRecord is the persisted record of one submitted payroll
// transaction. BlockHash, BlockHeight and ConfirmedAt stay nil until the
// transaction is seen in a block.
type PayrollRecord struct {
	TxHash         string                    `json:"tx_hash"`
	SenderAddress  string                    `json:"sender_address"`
	TotalAmount    int64                     `json:"total_amount"`
	RecipientCount int                       `json:"recipient_count"`
	BlockHash      *string                   `json:"block_hash,omitempty"`
	BlockHeight    *int64                    `json:"block_height,omitempty"`
	Status         string                    `json:"status"`
	CreatedAt      time.Time                 `json:"created_at"`
	ConfirmedAt    *time.Time                `json:"confirmed_at,omitempty"`
	Outputs        []TransactionOutputRecord `json:"outputs"`
}

// TransactionOutputRecord is one recipient row of a payroll transaction.
// The sum of Amount over a transaction's rows equals the parent record's
// TotalAmount.
type TransactionOutputRecord struct {
	TxHash          string `json:"tx_hash"`
	ReceiverAddress string `json:"receiver_address"`
	Amount          int64  `json:"amount"`
}

// SubmitResult is the response body for a successful submission.
type SubmitResult struct {
	Success     bool   `json:"success"`
	TxHash      string `json:"tx_hash"`
	ExplorerURL string `json:"explorer_url"`
}

// TransactionStatus is the response for GET /get_tx_info/{tx_hash}. The
// Source field records whether the answer came from the local ledger or
// the upstream explorer.
type TransactionStatus struct {
	TxHash      string     `json:"tx_hash"`
	Source      string     `json:"source"`
	Confirmed   bool       `json:"confirmed"`
	BlockHash   *string    `json:"block_hash,omitempty"`
	BlockHeight *int64     `json:"block_height,omitempty"`
	BlockTime   *time.Time `json:"block_time,omitempty"`
	TotalAmount int64      `json:"total_amount,omitempty"`
}

// HistoryResponse is the response body for GET /transaction_history.
type HistoryResponse struct {
	Transactions []PayrollRecord `json:"transactions"`
}
