package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lucky_streets/internal/clock"
	"lucky_streets/internal/game"
	"lucky_streets/internal/logger"
	"lucky_streets/internal/metrics"
)

// Subscriber receives room broadcasts. Deliver must never block; it reports
// false when the message was dropped.
type Subscriber interface {
	PlayerID() int64
	Deliver(msg []byte) bool
}

type command struct {
	apply func() ([]game.Event, error)
	after func()
	reply chan error
}

// Room owns one session. Every read and write of the session happens on the
// goroutine running Run, in the order commands were queued.
type Room struct {
	Code string

	hub     *Hub
	session *game.Session
	clock   clock.Clock
	log     *slog.Logger

	commands  chan command
	quit      chan struct{}
	closeOnce sync.Once

	// owned by the Run goroutine
	subs     map[int64]Subscriber
	timer    *TurnTimer
	deadline clock.Timer
	grace    map[int64]clock.Timer
	starting bool
	settled  bool

	snapshot    atomic.Pointer[game.Snapshot]
	subscribers atomic.Int32
	lastActive  atomic.Int64
}

func newRoom(h *Hub, s *game.Session) *Room {
	r := &Room{
		Code:     s.Code,
		hub:      h,
		session:  s,
		clock:    h.clock,
		log:      logger.With("room", s.Code, "session", s.ID),
		commands: make(chan command, 64),
		quit:     make(chan struct{}),
		subs:     make(map[int64]Subscriber),
		grace:    make(map[int64]clock.Timer),
	}
	r.timer = NewTurnTimer(h.clock, func(key game.TimerKey) {
		r.post(func() ([]game.Event, error) { return r.expire(key) })
	})
	snap := s.Snapshot()
	r.snapshot.Store(&snap)
	r.touch()
	return r
}

func (r *Room) Run() {
	r.log.Info("room started")
	for {
		select {
		case cmd := <-r.commands:
			err := r.apply(cmd.apply)
			if err == nil && cmd.after != nil {
				cmd.after()
			}
			if cmd.reply != nil {
				cmd.reply <- err
			}
		case <-r.quit:
			r.shutdown()
			r.log.Info("room closed")
			return
		}
	}
}

// Close stops the room goroutine. Queued commands are dropped.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.quit) })
}

// Do runs fn against the session on the room goroutine and waits for it.
// Successful transitions are checked, timed and broadcast before Do returns.
func (r *Room) Do(ctx context.Context, fn func(*game.Session) ([]game.Event, error)) error {
	return r.exec(ctx, func() ([]game.Event, error) { return fn(r.session) }, nil)
}

func (r *Room) exec(ctx context.Context, fn func() ([]game.Event, error), after func()) error {
	reply := make(chan error, 1)
	select {
	case r.commands <- command{apply: fn, after: after, reply: reply}:
	case <-r.quit:
		return game.ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-r.quit:
		return game.ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues a command nobody waits for. Used by timer callbacks.
func (r *Room) post(fn func() ([]game.Event, error)) {
	select {
	case r.commands <- command{apply: fn}:
	case <-r.quit:
	}
}

// Snapshot returns the state as of the last committed command.
func (r *Room) Snapshot() game.Snapshot {
	return *r.snapshot.Load()
}

func (r *Room) Subscribers() int {
	return int(r.subscribers.Load())
}

func (r *Room) LastActive() time.Time {
	return time.Unix(0, r.lastActive.Load())
}

func (r *Room) touch() {
	r.lastActive.Store(r.clock.Now().UnixNano())
}

func (r *Room) apply(fn func() ([]game.Event, error)) error {
	events, err := fn()
	if err != nil {
		return err
	}
	r.commit(events)
	return nil
}

// commit runs after every successful transition: ledger check, timers,
// snapshot, broadcast, and settlement once the session is over.
func (r *Room) commit(events []game.Event) {
	s := r.session
	if err := s.CheckInvariants(); err != nil {
		metrics.InvariantViolations.Inc()
		r.log.Error("ledger invariant violated", "error", err)
	}
	r.timer.Sync(s.TimerKey())
	r.syncDeadline()

	snap := s.Snapshot()
	if at, ok := r.timer.Expiry(); ok {
		snap.TimerEndsAt = at
	}
	r.snapshot.Store(&snap)
	r.touch()
	r.publish(events, snap)

	if snap.Phase == game.PhaseFinished && !r.settled {
		r.settled = true
		r.stopTimers()
		r.log.Info("session finished", "winner", snap.Winner, "reason", snap.EndReason, "pot", snap.Pot)
		r.hub.roomFinished(r, snap)
	}
}

func (r *Room) publish(events []game.Event, snap game.Snapshot) {
	if len(events) == 0 || len(r.subs) == 0 {
		return
	}
	state, err := json.Marshal(snap)
	if err != nil {
		r.log.Error("marshal snapshot", "error", err)
		return
	}
	for _, ev := range events {
		msg, err := json.Marshal(EventMessage{Type: ev.Kind, Event: ev, State: state})
		if err != nil {
			r.log.Error("marshal event", "error", err, "event", ev.Kind)
			continue
		}
		for _, sub := range r.subs {
			if !sub.Deliver(msg) {
				metrics.DroppedMessages.Inc()
				r.log.Warn("dropped message for slow client", "player_id", sub.PlayerID())
			}
		}
	}
}

func (r *Room) syncDeadline() {
	s := r.session
	if r.deadline != nil || s.Deadline.IsZero() {
		return
	}
	if s.Phase != game.PhaseActive && s.Phase != game.PhaseDrafting {
		return
	}
	wait := s.Deadline.Sub(r.clock.Now())
	r.deadline = r.clock.AfterFunc(wait, func() {
		r.post(func() ([]game.Event, error) {
			events, err := r.session.ExpireSession()
			if err != nil {
				r.log.Debug("session deadline ignored", "error", err)
			}
			return events, err
		})
	})
}

func (r *Room) expire(key game.TimerKey) ([]game.Event, error) {
	events, err := r.session.Expire(key)
	if err != nil {
		if errors.Is(err, game.ErrStaleState) {
			r.log.Debug("stale timer ignored", "kind", key.Kind, "turn", key.Turn)
		} else {
			r.log.Warn("timer expiry failed", "kind", key.Kind, "error", err)
		}
		return nil, err
	}
	metrics.TimerExpiries.WithLabelValues(string(key.Kind)).Inc()
	r.log.Info("turn timer expired", "kind", key.Kind, "turn", key.Turn, "state", key.State)
	return events, nil
}

// attach subscribes a client and marks the player present. The client gets
// a full snapshot right after.
func (r *Room) attach(ctx context.Context, sub Subscriber) error {
	id := sub.PlayerID()
	return r.exec(ctx, func() ([]game.Event, error) {
		if r.session.Player(id) == nil {
			return nil, game.ErrRoomNotFound
		}
		if t, ok := r.grace[id]; ok {
			t.Stop()
			delete(r.grace, id)
		}
		r.subs[id] = sub
		r.subscribers.Store(int32(len(r.subs)))
		if r.session.Phase == game.PhaseFinished {
			return nil, nil
		}
		return r.session.SetConnected(id, true)
	}, func() {
		sub.Deliver(stateMessage(r.Snapshot()))
	})
}

// detach handles a dropped connection. Lobby seats are freed at once;
// running players get the reconnect grace before they forfeit.
func (r *Room) detach(ctx context.Context, sub Subscriber) error {
	id := sub.PlayerID()
	return r.exec(ctx, func() ([]game.Event, error) {
		if cur, ok := r.subs[id]; ok && cur == sub {
			delete(r.subs, id)
			r.subscribers.Store(int32(len(r.subs)))
		} else if ok {
			// a newer connection took over
			return nil, nil
		}
		p := r.session.Player(id)
		if p == nil {
			return nil, nil
		}
		switch r.session.Phase {
		case game.PhaseLobby:
			if r.starting {
				return r.session.SetConnected(id, false)
			}
			events, err := r.session.RemovePlayer(id)
			if err == nil {
				r.hub.unseat(id, r.Code)
			}
			return events, err
		case game.PhaseActive, game.PhaseDrafting:
			if !p.Bankrupt {
				r.armGrace(id)
			}
			return r.session.SetConnected(id, false)
		}
		return nil, nil
	}, nil)
}

func (r *Room) armGrace(id int64) {
	if _, ok := r.grace[id]; ok {
		return
	}
	r.grace[id] = r.clock.AfterFunc(r.hub.cfg.ReconnectGrace, func() {
		r.post(func() ([]game.Event, error) { return r.forfeit(id) })
	})
}

func (r *Room) forfeit(id int64) ([]game.Event, error) {
	delete(r.grace, id)
	p := r.session.Player(id)
	if p == nil || p.Connected || p.Bankrupt {
		return nil, nil
	}
	if r.session.Phase != game.PhaseActive && r.session.Phase != game.PhaseDrafting {
		return nil, nil
	}
	r.log.Info("reconnect grace expired", "player_id", id)
	events, err := r.session.RemovePlayer(id)
	if err == nil {
		r.hub.unseat(id, r.Code)
	}
	return events, err
}

// leave removes a player on request and drops their subscription.
func (r *Room) leave(ctx context.Context, id int64) error {
	return r.exec(ctx, func() ([]game.Event, error) {
		events, err := r.session.RemovePlayer(id)
		if err != nil {
			return nil, err
		}
		if t, ok := r.grace[id]; ok {
			t.Stop()
			delete(r.grace, id)
		}
		delete(r.subs, id)
		r.subscribers.Store(int32(len(r.subs)))
		return events, nil
	}, nil)
}

func (r *Room) stopTimers() {
	r.timer.Stop()
	if r.deadline != nil {
		r.deadline.Stop()
		r.deadline = nil
	}
	for id, t := range r.grace {
		t.Stop()
		delete(r.grace, id)
	}
}

func (r *Room) shutdown() {
	r.stopTimers()
	r.subs = make(map[int64]Subscriber)
	r.subscribers.Store(0)
}
