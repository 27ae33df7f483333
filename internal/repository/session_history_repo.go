package repository

import (
	"context"
	"encoding/json"

	"lucky_streets/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionHistoryRepository struct {
	db *pgxpool.Pool
}

func NewSessionHistoryRepository(db *pgxpool.Pool) *SessionHistoryRepository {
	return &SessionHistoryRepository{db: db}
}

// CreateWithTx сохраняет строку истории внутри транзакции
func (r *SessionHistoryRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, h *domain.SessionHistory) error {
	detailsJSON, err := json.Marshal(h.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	return tx.QueryRow(ctx,
		`INSERT INTO session_history
			(account_id, session_id, room_code, variant, buy_in, pot, result, payout, net_worth, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		h.AccountID, h.SessionID, h.RoomCode, h.Variant, h.BuyIn,
		h.Pot, h.Result, h.Payout, h.NetWorth, detailsJSON,
	).Scan(&h.ID, &h.CreatedAt)
}

// Exists reports whether a session was already recorded.
func (r *SessionHistoryRepository) Exists(ctx context.Context, tx pgx.Tx, sessionID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM session_history WHERE session_id = $1)`,
		sessionID,
	).Scan(&exists)
	return exists, err
}

// GetByAccount возвращает историю сессий игрока
func (r *SessionHistoryRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*domain.SessionHistory, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, session_id, room_code, variant, buy_in, pot,
				result, payout, net_worth, details, created_at
		 FROM session_history
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.SessionHistory
	for rows.Next() {
		var (
			h           domain.SessionHistory
			detailsJSON []byte
		)
		if err := rows.Scan(
			&h.ID, &h.AccountID, &h.SessionID, &h.RoomCode, &h.Variant, &h.BuyIn,
			&h.Pot, &h.Result, &h.Payout, &h.NetWorth, &detailsJSON, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(detailsJSON) > 0 {
			_ = json.Unmarshal(detailsJSON, &h.Details)
		}
		result = append(result, &h)
	}

	return result, rows.Err()
}

// LeaderboardEntry is one row of the monthly winners table.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	AccountID   int64  `json:"account_id"`
	DisplayName string `json:"display_name"`
	Wins        int64  `json:"wins"`
	Winnings    int64  `json:"winnings"`
}

// GetMonthlyTop returns accounts ranked by pot winnings in the current month.
func (r *SessionHistoryRepository) GetMonthlyTop(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx, `
		SELECT a.id, COALESCE(NULLIF(a.display_name, ''), a.username),
		       w.wins, w.winnings
		FROM accounts a
		JOIN (
			SELECT account_id, COUNT(*) AS wins, SUM(payout - buy_in)::BIGINT AS winnings
			FROM session_history
			WHERE created_at >= date_trunc('month', CURRENT_DATE) AND result = 'win'
			GROUP BY account_id
		) w ON w.account_id = a.id
		ORDER BY w.winnings DESC, w.wins DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.AccountID, &e.DisplayName, &e.Wins, &e.Winnings); err != nil {
			return nil, err
		}
		e.Rank = rank
		res = append(res, e)
		rank++
	}
	return res, rows.Err()
}
