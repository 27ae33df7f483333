package domain

import "time"

// Ledger transaction types
const (
	TxSessionBuyIn  = "session_buy_in"
	TxSessionRefund = "session_refund"
	TxSessionPayout = "session_payout"
	TxDevGrant      = "dev_grant"
)

type Transaction struct {
	ID        int64                  `db:"id" json:"id"`
	AccountID int64                  `db:"account_id" json:"account_id"`
	Type      string                 `db:"type" json:"type"`
	Amount    int64                  `db:"amount" json:"amount"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}
