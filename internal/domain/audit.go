package domain

import "time"

// AuditLog represents an audit log entry for tracking money movements
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	AccountID int64                  `db:"account_id" json:"account_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth    = "auth"
	AuditCategoryGame    = "game"
	AuditCategoryBalance = "balance"
)

// Audit actions
const (
	AuditActionLogin = "login"

	AuditActionSessionWin  = "session_win"
	AuditActionSessionLose = "session_lose"

	AuditActionBalanceCredit = "balance_credit"
	AuditActionBalanceDebit  = "balance_debit"
)
