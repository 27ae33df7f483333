package game

import (
	"errors"
	"testing"
)

// scripted replays fixed values, reduced modulo n. It returns 0 once exhausted.
type scripted struct {
	vals []int
	i    int
}

func (r *scripted) IntN(n int) int {
	if r.i >= len(r.vals) {
		return 0
	}
	v := r.vals[r.i] % n
	r.i++
	return v
}

func (r *scripted) push(vals ...int) {
	r.vals = append(r.vals, vals...)
}

// die values are 1-based; the source yields 0-based.
func (r *scripted) roll(a, b int) {
	r.push(a-1, b-1)
}

func startedSession(t *testing.T, rules *Rules, buyIn int64, players int) (*Session, *scripted) {
	t.Helper()
	rnd := &scripted{}
	s := NewSession("TEST", rules, buyIn, WithRandom(rnd))
	for i := 1; i <= players; i++ {
		if _, err := s.AddPlayer(int64(i), ""); err != nil {
			t.Fatalf("AddPlayer(%d): %v", i, err)
		}
	}
	if _, err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s, rnd
}

func classicNoDraft() *Rules {
	r := ClassicRules()
	r.Draft = false
	return r
}

// setCash moves money between a player and the bank, keeping the totals intact.
func setCash(t *testing.T, s *Session, p *Player, cash int64) {
	t.Helper()
	s.Bank += p.Cash - cash
	p.Cash = cash
	if s.Bank < 0 {
		t.Fatalf("setCash drained the bank: %d", s.Bank)
	}
}

func give(s *Session, p *Player, idx int) {
	s.assign(idx, p)
}

func mustInvariants(t *testing.T, s *Session) {
	t.Helper()
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v; want %v", err, target)
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func outcomeByID(t *testing.T, table *OutcomeTable, id string) Outcome {
	t.Helper()
	for _, o := range table.Outcomes() {
		if o.ID == id {
			return o
		}
	}
	t.Fatalf("outcome %s not in table", id)
	return Outcome{}
}
