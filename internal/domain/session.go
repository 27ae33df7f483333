package domain

import "time"

// SessionResult - итог сессии для игрока
type SessionResult string

const (
	SessionResultWin  SessionResult = "win"
	SessionResultLose SessionResult = "lose"
)

// SessionHistory is one player's row for a finished session.
type SessionHistory struct {
	ID        int64                  `db:"id" json:"id"`
	AccountID int64                  `db:"account_id" json:"account_id"`
	SessionID string                 `db:"session_id" json:"session_id"`
	RoomCode  string                 `db:"room_code" json:"room_code"`
	Variant   string                 `db:"variant" json:"variant"`
	BuyIn     int64                  `db:"buy_in" json:"buy_in"`
	Pot       int64                  `db:"pot" json:"pot"`
	Result    SessionResult          `db:"result" json:"result"`
	Payout    int64                  `db:"payout" json:"payout"`
	NetWorth  int64                  `db:"net_worth" json:"net_worth"`
	Details   map[string]interface{} `db:"details" json:"details,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}
