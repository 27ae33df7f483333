package domain

import "time"

// Account is a player's real-money wallet in the external ledger.
type Account struct {
	ID          int64     `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Balance     int64     `db:"balance" json:"balance"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
