package service

import (
	"context"
	"errors"

	"lucky_streets/internal/domain"
	"lucky_streets/internal/game"
	"lucky_streets/internal/logger"
	"lucky_streets/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettlementService pays the pot of a finished session to its winner and
// records every player's result, all in one database transaction.
type SettlementService struct {
	db              *pgxpool.Pool
	balance         *BalanceService
	transactionRepo *repository.TransactionRepository
	historyRepo     *repository.SessionHistoryRepository
	auditRepo       *repository.AuditRepository
}

func NewSettlementService(db *pgxpool.Pool, balance *BalanceService) *SettlementService {
	return &SettlementService{
		db:              db,
		balance:         balance,
		transactionRepo: repository.NewTransactionRepository(db),
		historyRepo:     repository.NewSessionHistoryRepository(db),
		auditRepo:       repository.NewAuditRepository(db),
	}
}

// Settle is idempotent per session id.
func (s *SettlementService) Settle(ctx context.Context, snap game.Snapshot) error {
	if snap.Phase != game.PhaseFinished {
		return errors.New("session is not finished")
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// serialize concurrent settlements of the same session
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, snap.ID); err != nil {
		return err
	}
	done, err := s.historyRepo.Exists(ctx, tx, snap.ID)
	if err != nil {
		return err
	}
	if done {
		logger.Warn("session already settled", "session", snap.ID)
		return nil
	}

	meta := map[string]interface{}{"session_id": snap.ID, "room": snap.Code, "reason": snap.EndReason}
	if snap.Winner != 0 && snap.Pot > 0 {
		if _, err := s.balance.CreditWithTx(ctx, tx, snap.Winner, snap.Pot); err != nil {
			return err
		}
		payout := &domain.Transaction{
			AccountID: snap.Winner,
			Type:      domain.TxSessionPayout,
			Amount:    snap.Pot,
			Meta:      meta,
		}
		if err := s.transactionRepo.CreateWithTx(ctx, tx, payout); err != nil {
			return err
		}
	}

	for _, h := range HistoryRows(snap) {
		if err := s.historyRepo.CreateWithTx(ctx, tx, h); err != nil {
			return err
		}
		action := domain.AuditActionSessionLose
		if h.Result == domain.SessionResultWin {
			action = domain.AuditActionSessionWin
		}
		entry := &domain.AuditLog{
			AccountID: h.AccountID,
			Action:    action,
			Category:  domain.AuditCategoryGame,
			Details: map[string]interface{}{
				"session_id": snap.ID,
				"buy_in":     snap.BuyIn,
				"payout":     h.Payout,
				"net_worth":  h.NetWorth,
			},
		}
		if err := s.auditRepo.CreateWithTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// HistoryRows builds one history row per seated player.
func HistoryRows(snap game.Snapshot) []*domain.SessionHistory {
	rows := make([]*domain.SessionHistory, 0, len(snap.Players))
	for _, p := range snap.Players {
		h := &domain.SessionHistory{
			AccountID: p.ID,
			SessionID: snap.ID,
			RoomCode:  snap.Code,
			Variant:   string(snap.Variant),
			BuyIn:     snap.BuyIn,
			Pot:       snap.Pot,
			Result:    domain.SessionResultLose,
			NetWorth:  p.NetWorth,
			Details: map[string]interface{}{
				"reason":     snap.EndReason,
				"bankrupt":   p.Bankrupt,
				"properties": len(p.Properties),
				"rounds":     snap.Round,
			},
		}
		if p.ID == snap.Winner {
			h.Result = domain.SessionResultWin
			h.Payout = snap.Pot
		}
		rows = append(rows, h)
	}
	return rows
}
