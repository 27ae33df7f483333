package ws

import (
	"context"
	"errors"
	"testing"
	"time"

	"lucky_streets/internal/game"
)

func TestRollTimerExpiryChargesAndAdvances(t *testing.T) {
	env := newTestEnv(t, false)
	env.connect(1, 2)
	r := env.startedRoom(t, 2, game.VariantLucky)
	before := r.Snapshot()
	if before.CurrentPlayer != 1 || before.TurnNumber != 1 {
		t.Fatalf("start = %+v", before)
	}

	env.clock.Advance(9 * time.Second)
	flush(t, r)
	if r.Snapshot().TurnNumber != 1 {
		t.Fatalf("timer fired early")
	}

	env.clock.Advance(time.Second)
	flush(t, r)
	after := r.Snapshot()
	if after.TurnNumber != 2 || after.CurrentPlayer != 2 {
		t.Fatalf("after expiry = turn %d player %d", after.TurnNumber, after.CurrentPlayer)
	}
	p1 := after.Players[0]
	if p1.Cash >= 100 || after.Bank != 100-p1.Cash {
		t.Fatalf("penalty: cash %d bank %d", p1.Cash, after.Bank)
	}
	var total int64
	for _, p := range after.Players {
		total += p.Cash
	}
	if total+after.Bank != after.Pot {
		t.Fatalf("cash %d + bank %d != pot %d", total, after.Bank, after.Pot)
	}
}

func TestSnapshotCarriesTimerExpiry(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.startedRoom(t, 2, game.VariantLucky)
	start := env.clock.Now()
	if got := r.Snapshot().TimerEndsAt; !got.Equal(start.Add(10 * time.Second)) {
		t.Fatalf("roll timer ends at %s; want %s", got, start.Add(10*time.Second))
	}

	env.clock.Advance(3 * time.Second)
	ctx := context.Background()
	if err := env.hub.Act(ctx, 1, func(s *game.Session) ([]game.Event, error) { return s.RollDice(1) }); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	snap := r.Snapshot()
	if snap.Phase != game.PhaseActive {
		t.Fatalf("phase = %s", snap.Phase)
	}
	key, d, ok := r.session.TimerKey()
	if !ok || key.Kind == game.TimerRoll {
		t.Fatalf("timer after roll = %+v %v", key, ok)
	}
	if want := env.clock.Now().Add(d); !snap.TimerEndsAt.Equal(want) {
		t.Fatalf("decision timer ends at %s; want %s", snap.TimerEndsAt, want)
	}
}

func TestStaleTimerIsIgnored(t *testing.T) {
	env := newTestEnv(t, false)
	r := env.startedRoom(t, 2, game.VariantLucky)
	key, _, ok := r.session.TimerKey()
	if !ok || key.Kind != game.TimerRoll {
		t.Fatalf("key = %+v %v", key, ok)
	}

	ctx := context.Background()
	if err := env.hub.Act(ctx, 1, func(s *game.Session) ([]game.Event, error) { return s.RollDice(1) }); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	turn := r.Snapshot().TurnNumber

	err := r.exec(ctx, func() ([]game.Event, error) { return r.expire(key) }, nil)
	if !errors.Is(err, game.ErrStaleState) {
		t.Fatalf("err = %v", err)
	}
	if r.Snapshot().TurnNumber != turn {
		t.Fatalf("stale expiry changed the session")
	}
}

func TestActRejectsOutOfTurn(t *testing.T) {
	env := newTestEnv(t, true)
	r := env.startedRoom(t, 2, game.VariantLucky)
	ctx := context.Background()

	err := env.hub.Act(ctx, 2, func(s *game.Session) ([]game.Event, error) { return s.RollDice(2) })
	if !errors.Is(err, game.ErrNotYourTurn) {
		t.Fatalf("err = %v", err)
	}
	if err := env.hub.Act(ctx, 7, func(s *game.Session) ([]game.Event, error) { return s.RollDice(7) }); !errors.Is(err, game.ErrRoomNotFound) {
		t.Fatalf("unseated err = %v", err)
	}
	if r.Snapshot().TurnNumber != 1 {
		t.Fatalf("rejected action changed the session")
	}
}

func TestPublishSkipsSlowSubscriber(t *testing.T) {
	env := newTestEnv(t, true)
	subs := env.connect(1, 2)
	r := env.startedRoom(t, 2, game.VariantLucky)

	subs[1].mu.Lock()
	subs[1].full = true
	seen := len(subs[1].msgs)
	subs[1].mu.Unlock()
	fastSeen := len(subs[0].types())

	done := make(chan error, 1)
	go func() {
		done <- env.hub.Act(context.Background(), 1, func(s *game.Session) ([]game.Event, error) { return s.RollDice(1) })
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RollDice: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked on a slow subscriber")
	}
	flush(t, r)

	if len(subs[0].types()) <= fastSeen {
		t.Fatalf("fast subscriber missed the roll")
	}
	subs[1].mu.Lock()
	defer subs[1].mu.Unlock()
	if len(subs[1].msgs) != seen {
		t.Fatalf("full subscriber received messages")
	}
}

func TestAttachRejectsStranger(t *testing.T) {
	env := newTestEnv(t, true)
	r := env.startedRoom(t, 2, game.VariantLucky)
	if err := r.attach(context.Background(), &fakeSub{id: 9}); !errors.Is(err, game.ErrRoomNotFound) {
		t.Fatalf("err = %v", err)
	}
	if r.Subscribers() != 0 {
		t.Fatalf("subscribers = %d", r.Subscribers())
	}
}

func TestClosedRoomRejectsCommands(t *testing.T) {
	env := newTestEnv(t, true)
	r := env.startedRoom(t, 2, game.VariantLucky)
	r.Close()
	err := r.Do(context.Background(), func(*game.Session) ([]game.Event, error) { return nil, nil })
	if !errors.Is(err, game.ErrRoomNotFound) {
		t.Fatalf("err = %v", err)
	}
}
