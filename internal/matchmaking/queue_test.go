package matchmaking

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"lucky_streets/internal/clock"

	redis "github.com/redis/go-redis/v9"
)

type recorder struct {
	mu      sync.Mutex
	matches [][]Ticket
}

func (r *recorder) onMatch(tier int64, tickets []Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, tickets)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches)
}

func newQueue(opts ...Option) (*Queue, *clock.Fake, *recorder) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	rec := &recorder{}
	return New(clk, rec.onMatch, opts...), clk, rec
}

func TestFourFormImmediately(t *testing.T) {
	q, clk, rec := newQueue()
	for i := int64(1); i <= 5; i++ {
		if _, err := q.Enqueue(i, "p", 500); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		clk.Advance(time.Millisecond)
	}
	if rec.count() != 1 {
		t.Fatalf("matches = %d", rec.count())
	}
	got := rec.matches[0]
	for i, tk := range got {
		if tk.PlayerID != int64(i+1) {
			t.Fatalf("match order = %+v", got)
		}
	}
	if q.Status()[500] != 1 {
		t.Fatalf("status = %v", q.Status())
	}
	if tier, pos, ok := q.Position(5); !ok || tier != 500 || pos != 1 {
		t.Fatalf("position = %d %d %v", tier, pos, ok)
	}
}

func TestGraceFormsSmallGroup(t *testing.T) {
	q, clk, rec := newQueue()
	q.Enqueue(1, "a", 100)
	clk.Advance(4 * time.Second)
	q.Enqueue(2, "b", 100)
	clk.Advance(5 * time.Second)
	if rec.count() != 0 {
		t.Fatalf("formed before grace")
	}
	q.Enqueue(3, "c", 100)
	clk.Advance(time.Second)
	if rec.count() != 1 || len(rec.matches[0]) != 3 {
		t.Fatalf("matches = %+v", rec.matches)
	}
	if len(q.Status()) != 0 {
		t.Fatalf("status = %v", q.Status())
	}
}

func TestLoneTicketWaits(t *testing.T) {
	q, clk, rec := newQueue()
	q.Enqueue(1, "a", 100)
	clk.Advance(time.Minute)
	if rec.count() != 0 || clk.Pending() != 0 {
		t.Fatalf("lone ticket matched or armed a timer")
	}
	q.Enqueue(2, "b", 100)
	if rec.count() != 1 {
		t.Fatalf("an overdue pair should form on arrival")
	}
}

func TestEnqueueReplacesOtherTier(t *testing.T) {
	q, _, _ := newQueue()
	first, _ := q.Enqueue(1, "a", 100)
	second, _ := q.Enqueue(1, "a", 500)
	if first.ID == second.ID {
		t.Fatalf("tickets share an id")
	}
	status := q.Status()
	if status[100] != 0 || status[500] != 1 {
		t.Fatalf("status = %v", status)
	}
	if _, err := q.Enqueue(1, "a", 0); !errors.Is(err, ErrInvalidTier) {
		t.Fatalf("err = %v", err)
	}
}

func TestDequeueCancelsGrace(t *testing.T) {
	q, clk, rec := newQueue()
	q.Enqueue(1, "a", 100)
	q.Enqueue(2, "b", 100)
	if !q.Dequeue(2) {
		t.Fatalf("Dequeue returned false")
	}
	if q.Dequeue(2) {
		t.Fatalf("second Dequeue returned true")
	}
	clk.Advance(time.Minute)
	if rec.count() != 0 {
		t.Fatalf("matched after dequeue")
	}
}

// stalledClock never runs its callbacks, like a grace timer whose goroutine
// is still waiting on the queue lock.
type stalledClock struct{ now time.Time }

type stalledTimer struct{}

func (stalledTimer) Stop() bool { return true }

func (c *stalledClock) Now() time.Time { return c.now }

func (c *stalledClock) AfterFunc(time.Duration, func()) clock.Timer { return stalledTimer{} }

func TestDequeueDeliversGroupPastGrace(t *testing.T) {
	clk := &stalledClock{now: time.Unix(1_700_000_000, 0)}
	rec := &recorder{}
	q := New(clk, rec.onMatch)
	for i := int64(1); i <= 3; i++ {
		q.Enqueue(i, "p", 100)
	}
	clk.now = clk.now.Add(DefaultGrace + time.Second)

	if !q.Dequeue(3) {
		t.Fatalf("Dequeue returned false")
	}
	if rec.count() != 1 {
		t.Fatalf("matches = %d", rec.count())
	}
	got := rec.matches[0]
	if len(got) != 2 || got[0].PlayerID != 1 || got[1].PlayerID != 2 {
		t.Fatalf("match = %+v", got)
	}
	if n := q.Status()[100]; n != 0 {
		t.Fatalf("status = %v", q.Status())
	}
}

func TestRequeueKeepsPriority(t *testing.T) {
	q, clk, rec := newQueue()
	old, _ := q.Enqueue(1, "a", 100)
	q.Dequeue(1)
	clk.Advance(20 * time.Second)
	q.Enqueue(2, "b", 100)
	q.Requeue([]Ticket{old})
	if rec.count() != 1 {
		t.Fatalf("requeued ticket past its grace should form at once")
	}
	if rec.matches[0][0].PlayerID != 1 {
		t.Fatalf("order = %+v", rec.matches[0])
	}
}

type failingMirror struct{ calls int }

func (m *failingMirror) Put(context.Context, Ticket) error {
	m.calls++
	return errors.New("down")
}

func (m *failingMirror) Remove(context.Context, int64, int64) error {
	m.calls++
	return errors.New("down")
}

func TestMirrorFailuresAreIgnored(t *testing.T) {
	mirror := &failingMirror{}
	q, _, rec := newQueue(WithMirror(mirror))
	for i := int64(1); i <= 4; i++ {
		q.Enqueue(i, "p", 100)
	}
	if rec.count() != 1 || mirror.calls != 8 {
		t.Fatalf("matches=%d mirror calls=%d", rec.count(), mirror.calls)
	}
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisMirrorIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	defer client.Close()

	ctx := context.Background()
	tier := time.Now().UnixNano()
	m := NewRedisMirror(client)
	defer client.Del(ctx, m.key(tier))

	if err := m.Put(ctx, Ticket{ID: "x", PlayerID: 7, Tier: tier}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := m.Tickets(ctx, tier)
	if err != nil || len(got) != 1 || got[0].PlayerID != 7 {
		t.Fatalf("Tickets = %+v %v", got, err)
	}
	if err := m.Remove(ctx, tier, 7); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	n, _ := client.HLen(ctx, m.key(tier)).Result()
	if n != 0 {
		t.Fatalf("hash still holds %d entries for tier %s", n, strconv.FormatInt(tier, 10))
	}
}
