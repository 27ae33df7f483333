package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"lucky_streets/internal/clock"
	"lucky_streets/internal/game"
	"lucky_streets/internal/service"
)

type fakeWallet struct {
	mu       sync.Mutex
	balances map[int64]int64
	failing  map[int64]bool
	debits   int
	credits  int
	onDebit  func(id int64)
	onCredit func(id int64)
}

func newFakeWallet(balances map[int64]int64) *fakeWallet {
	return &fakeWallet{balances: balances, failing: make(map[int64]bool)}
}

func (w *fakeWallet) GetBalance(_ context.Context, id int64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.balances[id]
	if !ok {
		return 0, service.ErrUserNotFound
	}
	return b, nil
}

func (w *fakeWallet) Debit(_ context.Context, id, amount int64, _ string, _ map[string]interface{}) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failing[id] {
		return 0, errors.New("ledger unavailable")
	}
	if w.balances[id] < amount {
		return 0, service.ErrInsufficientFunds
	}
	w.balances[id] -= amount
	w.debits++
	left, hook := w.balances[id], w.onDebit
	w.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	w.mu.Lock()
	return left, nil
}

func (w *fakeWallet) Credit(_ context.Context, id, amount int64, _ string, _ map[string]interface{}) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[id] += amount
	w.credits++
	left, hook := w.balances[id], w.onCredit
	w.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	w.mu.Lock()
	return left, nil
}

func (w *fakeWallet) balance(id int64) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[id]
}

func (w *fakeWallet) fail(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failing[id] = true
}

type fakeSettler struct {
	settled chan game.Snapshot
}

func newFakeSettler() *fakeSettler {
	return &fakeSettler{settled: make(chan game.Snapshot, 8)}
}

func (s *fakeSettler) Settle(_ context.Context, snap game.Snapshot) error {
	s.settled <- snap
	return nil
}

func (s *fakeSettler) wait(t *testing.T) game.Snapshot {
	t.Helper()
	select {
	case snap := <-s.settled:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatalf("session was never settled")
		return game.Snapshot{}
	}
}

type fakeSub struct {
	id   int64
	mu   sync.Mutex
	msgs [][]byte
	full bool
}

func (f *fakeSub) PlayerID() int64 { return f.id }

func (f *fakeSub) Deliver(msg []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.msgs = append(f.msgs, msg)
	return true
}

// types lists the "type" field of every delivered message.
func (f *fakeSub) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.msgs))
	for _, raw := range f.msgs {
		var m struct {
			Type   string `json:"type"`
			Status string `json:"status"`
		}
		_ = json.Unmarshal(raw, &m)
		if m.Status != "" {
			out = append(out, m.Type+":"+m.Status)
			continue
		}
		out = append(out, m.Type)
	}
	return out
}

func (f *fakeSub) has(typ string) bool {
	for _, t := range f.types() {
		if t == typ {
			return true
		}
	}
	return false
}

type testEnv struct {
	hub     *Hub
	clock   *clock.Fake
	wallet  *fakeWallet
	settler *fakeSettler
}

func newTestEnv(t *testing.T, patient bool) *testEnv {
	t.Helper()
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	w := newFakeWallet(map[int64]int64{1: 1000, 2: 1000, 3: 1000, 4: 1000, 5: 1000})
	st := newFakeSettler()
	cfg := HubConfig{
		Tiers:            []int64{100, 500},
		MatchmakingGrace: 10 * time.Second,
		ReconnectGrace:   30 * time.Second,
	}
	if patient {
		// keeps turn timers out of the way of reconnect and matchmaking tests
		cfg.Overrides = func(game.VariantKind) game.Overrides {
			return game.Overrides{TurnTimeout: time.Hour, DecisionTimeout: time.Hour}
		}
	}
	h := NewHub(cfg, w, st, WithClock(clk), WithSessionOptions(game.WithRandom(game.NewSeeded(7))))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})
	return &testEnv{hub: h, clock: clk, wallet: w, settler: st}
}

func (e *testEnv) room(t *testing.T, code string) *Room {
	t.Helper()
	r, err := e.hub.room(code)
	if err != nil {
		t.Fatalf("room %s: %v", code, err)
	}
	return r
}

// flush waits until every command queued before it has run.
func flush(t *testing.T, r *Room) {
	t.Helper()
	err := r.Do(context.Background(), func(*game.Session) ([]game.Event, error) { return nil, nil })
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func (e *testEnv) connect(ids ...int64) []*fakeSub {
	subs := make([]*fakeSub, 0, len(ids))
	for _, id := range ids {
		sub := &fakeSub{id: id}
		e.hub.Register(context.Background(), sub)
		subs = append(subs, sub)
	}
	return subs
}

// startedRoom seats players 1..n in a lobby and starts it.
func (e *testEnv) startedRoom(t *testing.T, n int, variant game.VariantKind) *Room {
	t.Helper()
	ctx := context.Background()
	snap, err := e.hub.CreateSession(ctx, Identity{ID: 1, Name: "p1"}, CreateOptions{BuyIn: 100, Variant: variant})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	for i := int64(2); i <= int64(n); i++ {
		if _, err := e.hub.JoinSession(ctx, snap.Code, Identity{ID: i, Name: "p"}); err != nil {
			t.Fatalf("JoinSession(%d): %v", i, err)
		}
	}
	if _, err := e.hub.StartSession(ctx, snap.Code, 1); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return e.room(t, snap.Code)
}
