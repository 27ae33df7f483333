package ws

import (
	"time"

	"lucky_streets/internal/clock"
	"lucky_streets/internal/game"
)

// TurnTimer keeps at most one countdown armed, bound to the session's
// current TimerKey. It is owned by the room goroutine.
type TurnTimer struct {
	clock  clock.Clock
	fire   func(game.TimerKey)
	key    game.TimerKey
	timer  clock.Timer
	armed  bool
	expiry time.Time
}

func NewTurnTimer(clk clock.Clock, fire func(game.TimerKey)) *TurnTimer {
	return &TurnTimer{clock: clk, fire: fire}
}

// Sync re-arms the countdown when the key changed. An unchanged key keeps
// the running countdown so actions that do not advance the turn cannot
// extend it.
func (t *TurnTimer) Sync(key game.TimerKey, d time.Duration, ok bool) {
	if ok && t.armed && t.key == key {
		return
	}
	t.Stop()
	if !ok {
		return
	}
	t.key = key
	t.armed = true
	t.expiry = t.clock.Now().Add(d)
	t.timer = t.clock.AfterFunc(d, func() { t.fire(key) })
}

func (t *TurnTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.armed = false
}

// Expiry reports when the armed countdown fires.
func (t *TurnTimer) Expiry() (time.Time, bool) {
	if !t.armed {
		return time.Time{}, false
	}
	return t.expiry, true
}
