package matchmaking

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"lucky_streets/internal/clock"
	"lucky_streets/internal/logger"
	"lucky_streets/internal/metrics"

	"github.com/google/uuid"
)

const (
	MatchSize     = 4
	MinMatchSize  = 2
	DefaultGrace  = 10 * time.Second
	mirrorTimeout = 2 * time.Second
)

var ErrInvalidTier = errors.New("invalid buy-in tier")

type Ticket struct {
	ID         string    `json:"id"`
	PlayerID   int64     `json:"player_id"`
	Name       string    `json:"name"`
	Tier       int64     `json:"tier"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// MatchFunc receives a formed group. It is called without the queue lock held.
type MatchFunc func(tier int64, tickets []Ticket)

// Mirror publishes the queue contents outside the process. Failures never
// block matchmaking.
type Mirror interface {
	Put(ctx context.Context, t Ticket) error
	Remove(ctx context.Context, tier, playerID int64) error
}

type Queue struct {
	mu       sync.Mutex
	clock    clock.Clock
	grace    time.Duration
	onMatch  MatchFunc
	mirror   Mirror
	tiers    map[int64][]Ticket
	byPlayer map[int64]int64
	timers   map[int64]clock.Timer
}

type Option func(*Queue)

func WithMirror(m Mirror) Option {
	return func(q *Queue) { q.mirror = m }
}

func WithGrace(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.grace = d
		}
	}
}

func New(clk clock.Clock, onMatch MatchFunc, opts ...Option) *Queue {
	q := &Queue{
		clock:    clk,
		grace:    DefaultGrace,
		onMatch:  onMatch,
		tiers:    make(map[int64][]Ticket),
		byPlayer: make(map[int64]int64),
		timers:   make(map[int64]clock.Timer),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue places a player in a tier, replacing any ticket they hold elsewhere.
func (q *Queue) Enqueue(playerID int64, name string, tier int64) (Ticket, error) {
	if tier <= 0 {
		return Ticket{}, ErrInvalidTier
	}
	t := Ticket{
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		Name:       name,
		Tier:       tier,
		EnqueuedAt: q.clock.Now(),
	}

	q.mu.Lock()
	old, replaced := q.removeLocked(playerID)
	q.insertLocked(t)
	groups := q.evaluateLocked(tier)
	if replaced && old != tier {
		groups = append(groups, q.evaluateLocked(old)...)
	}
	q.mu.Unlock()

	if replaced && old != tier {
		q.mirrorRemove(old, playerID)
	}
	q.mirrorPut(t)
	q.deliver(groups)
	return t, nil
}

// Dequeue removes a player's ticket. It reports whether one existed.
func (q *Queue) Dequeue(playerID int64) bool {
	var groups []group
	q.mu.Lock()
	tier, ok := q.removeLocked(playerID)
	if ok {
		groups = q.evaluateLocked(tier)
	}
	q.mu.Unlock()

	if ok {
		q.mirrorRemove(tier, playerID)
	}
	q.deliver(groups)
	return ok
}

// Requeue puts tickets back keeping their original enqueue time, so players
// whose match fell through keep their priority.
func (q *Queue) Requeue(tickets []Ticket) {
	var groups []group
	q.mu.Lock()
	touched := make(map[int64]bool)
	for _, t := range tickets {
		if _, queued := q.byPlayer[t.PlayerID]; queued {
			continue
		}
		q.insertLocked(t)
		touched[t.Tier] = true
	}
	for tier := range touched {
		groups = append(groups, q.evaluateLocked(tier)...)
	}
	q.mu.Unlock()

	for _, t := range tickets {
		q.mirrorPut(t)
	}
	q.deliver(groups)
}

// Status returns the number of waiting tickets per tier.
func (q *Queue) Status() map[int64]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[int64]int, len(q.tiers))
	for tier, list := range q.tiers {
		out[tier] = len(list)
	}
	return out
}

// Position returns the player's tier and 1-based place in it.
func (q *Queue) Position(playerID int64) (tier int64, pos int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	tier, ok = q.byPlayer[playerID]
	if !ok {
		return 0, 0, false
	}
	for i, t := range q.tiers[tier] {
		if t.PlayerID == playerID {
			return tier, i + 1, true
		}
	}
	return 0, 0, false
}

// Stop cancels pending grace timers.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for tier, t := range q.timers {
		t.Stop()
		delete(q.timers, tier)
	}
}

type group struct {
	tier    int64
	tickets []Ticket
}

func (q *Queue) insertLocked(t Ticket) {
	list := append(q.tiers[t.Tier], t)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].EnqueuedAt.Before(list[j].EnqueuedAt)
	})
	q.tiers[t.Tier] = list
	q.byPlayer[t.PlayerID] = t.Tier
	metrics.QueueDepth.WithLabelValues(tierLabel(t.Tier)).Set(float64(len(list)))
}

func (q *Queue) removeLocked(playerID int64) (int64, bool) {
	tier, ok := q.byPlayer[playerID]
	if !ok {
		return 0, false
	}
	delete(q.byPlayer, playerID)
	list := q.tiers[tier]
	for i, t := range list {
		if t.PlayerID == playerID {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	q.setTierLocked(tier, list)
	return tier, true
}

func (q *Queue) setTierLocked(tier int64, list []Ticket) {
	if len(list) == 0 {
		delete(q.tiers, tier)
	} else {
		q.tiers[tier] = list
	}
	metrics.QueueDepth.WithLabelValues(tierLabel(tier)).Set(float64(len(list)))
}

// evaluateLocked forms every group the tier is ready for and re-arms the
// grace timer for what is left.
func (q *Queue) evaluateLocked(tier int64) []group {
	var out []group
	for {
		list := q.tiers[tier]
		n := 0
		switch {
		case len(list) >= MatchSize:
			n = MatchSize
		case len(list) >= MinMatchSize:
			if !q.clock.Now().Before(list[0].EnqueuedAt.Add(q.grace)) {
				n = len(list)
			}
		}
		if n == 0 {
			break
		}
		formed := make([]Ticket, n)
		copy(formed, list[:n])
		q.setTierLocked(tier, append([]Ticket(nil), list[n:]...))
		for _, t := range formed {
			delete(q.byPlayer, t.PlayerID)
		}
		out = append(out, group{tier: tier, tickets: formed})
	}
	q.armLocked(tier)
	return out
}

func (q *Queue) armLocked(tier int64) {
	if t, ok := q.timers[tier]; ok {
		t.Stop()
		delete(q.timers, tier)
	}
	list := q.tiers[tier]
	if len(list) < MinMatchSize {
		return
	}
	wait := list[0].EnqueuedAt.Add(q.grace).Sub(q.clock.Now())
	q.timers[tier] = q.clock.AfterFunc(wait, func() { q.fire(tier) })
}

func (q *Queue) fire(tier int64) {
	q.mu.Lock()
	delete(q.timers, tier)
	groups := q.evaluateLocked(tier)
	q.mu.Unlock()
	q.deliver(groups)
}

func (q *Queue) deliver(groups []group) {
	for _, g := range groups {
		for _, t := range g.tickets {
			q.mirrorRemove(g.tier, t.PlayerID)
		}
		metrics.MatchesFormed.WithLabelValues(tierLabel(g.tier)).Inc()
		logger.Info("match formed", "tier", g.tier, "players", len(g.tickets))
		if q.onMatch != nil {
			q.onMatch(g.tier, g.tickets)
		}
	}
}

func (q *Queue) mirrorPut(t Ticket) {
	if q.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()
	if err := q.mirror.Put(ctx, t); err != nil {
		logger.Warn("matchmaking mirror put failed", "player_id", t.PlayerID, "error", err)
	}
}

func (q *Queue) mirrorRemove(tier, playerID int64) {
	if q.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()
	if err := q.mirror.Remove(ctx, tier, playerID); err != nil {
		logger.Warn("matchmaking mirror remove failed", "player_id", playerID, "error", err)
	}
}

func tierLabel(tier int64) string {
	return strconv.FormatInt(tier, 10)
}
