package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"lucky_streets/internal/domain"
	"lucky_streets/internal/game"
	"lucky_streets/internal/repository"
	"lucky_streets/internal/service"
)

func TestBalanceService_DebitCredit(t *testing.T) {
	db := connect(t)
	ctx := context.Background()
	balances := service.NewBalanceService(db)
	a := fundedAccount(t, db, "ledger", 300)

	got, err := balances.Debit(ctx, a.ID, 200, domain.TxSessionBuyIn, map[string]interface{}{"room": "TEST"})
	if err != nil || got != 100 {
		t.Fatalf("Debit = %d, %v", got, err)
	}
	if _, err := balances.Debit(ctx, a.ID, 200, domain.TxSessionBuyIn, nil); !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("overdraft err = %v", err)
	}
	if got, _ := balances.GetBalance(ctx, a.ID); got != 100 {
		t.Fatalf("balance after rejected debit = %d", got)
	}

	txs, err := balances.GetTransactionHistory(ctx, a.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(txs) != 2 || txs[0].Type != domain.TxSessionBuyIn || txs[0].Amount != -200 {
		t.Fatalf("transactions = %+v", txs)
	}
}

func TestSettlementService_PaysWinnerOnce(t *testing.T) {
	db := connect(t)
	ctx := context.Background()
	balances := service.NewBalanceService(db)
	settler := service.NewSettlementService(db, balances)

	const buyIn = 500
	a := fundedAccount(t, db, "winner", buyIn)
	b := fundedAccount(t, db, "loser", buyIn)
	for _, acc := range []int64{a.ID, b.ID} {
		if _, err := balances.Debit(ctx, acc, buyIn, domain.TxSessionBuyIn, nil); err != nil {
			t.Fatalf("buy-in: %v", err)
		}
	}

	snap := game.Snapshot{
		ID:        fmt.Sprintf("it-%d", time.Now().UnixNano()),
		Code:      "ITST",
		Variant:   game.VariantLucky,
		Phase:     game.PhaseFinished,
		BuyIn:     buyIn,
		Pot:       2 * buyIn,
		Winner:    a.ID,
		EndReason: "last-player-standing",
		Players: []game.PlayerView{
			{Player: game.Player{ID: a.ID, Cash: 2 * buyIn}, NetWorth: 2 * buyIn},
			{Player: game.Player{ID: b.ID, Bankrupt: true}},
		},
	}
	for i := 0; i < 2; i++ {
		if err := settler.Settle(ctx, snap); err != nil {
			t.Fatalf("Settle #%d: %v", i+1, err)
		}
	}

	if got, _ := balances.GetBalance(ctx, a.ID); got != 2*buyIn {
		t.Fatalf("winner balance = %d", got)
	}
	if got, _ := balances.GetBalance(ctx, b.ID); got != 0 {
		t.Fatalf("loser balance = %d", got)
	}

	history, err := repository.NewSessionHistoryRepository(db).GetByAccount(ctx, a.ID, 10)
	if err != nil || len(history) != 1 {
		t.Fatalf("history = %+v, %v", history, err)
	}
	if history[0].Result != domain.SessionResultWin || history[0].Payout != 2*buyIn {
		t.Fatalf("row = %+v", history[0])
	}
}

func TestSettlementService_RejectsUnfinished(t *testing.T) {
	db := connect(t)
	settler := service.NewSettlementService(db, service.NewBalanceService(db))
	if err := settler.Settle(context.Background(), game.Snapshot{ID: "x", Phase: game.PhaseActive}); err == nil {
		t.Fatalf("settled an active session")
	}
}

func TestAuditService_AccountLogs(t *testing.T) {
	db := connect(t)
	ctx := context.Background()
	audit := service.NewAuditService(db)
	a := fundedAccount(t, db, "audited", 0)

	audit.LogLogin(ctx, a.ID, "10.0.0.1", "smoke")
	audit.LogBalanceChange(ctx, a.ID, -100, domain.TxSessionBuyIn, map[string]interface{}{"room": "AUDT"})

	logs, err := audit.GetAccountAuditLogs(ctx, a.ID, 10)
	if err != nil {
		t.Fatalf("GetAccountAuditLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %+v", logs)
	}
	seen := make(map[string]bool)
	for _, l := range logs {
		if l.AccountID != a.ID {
			t.Fatalf("foreign log %+v", l)
		}
		seen[l.Action] = true
	}
	if !seen[domain.AuditActionLogin] || !seen[domain.AuditActionBalanceDebit] {
		t.Fatalf("actions = %v", seen)
	}
}
