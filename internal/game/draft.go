package game

import "slices"

// Draft is the pre-game round where players take free properties from a
// random pool in seat order.
type Draft struct {
	Pool    []int `json:"pool"`
	Drafter int64 `json:"drafter"`
	Picks   int   `json:"picks"`
	Round   int   `json:"round"`

	seat int
}

func (s *Session) startDraft() {
	s.Phase = PhaseDrafting
	s.Draft = &Draft{}
	s.refillPool()
	s.continueDraft()
}

func (s *Session) refillPool() {
	d := s.Draft
	var candidates []int
	for _, sp := range s.Board {
		if sp.Ownable() && sp.Owner == 0 && !slices.Contains(d.Pool, sp.Index) {
			candidates = append(candidates, sp.Index)
		}
	}
	for i := len(candidates) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	need := s.rules.DraftPoolSize - len(d.Pool)
	if need > len(candidates) {
		need = len(candidates)
	}
	if need > 0 {
		d.Pool = append(d.Pool, candidates[:need]...)
		d.Round++
	}
}

func (s *Session) draftEligible(p *Player) bool {
	return !p.Bankrupt && len(p.Properties) < s.rules.DraftPicks
}

// continueDraft hands the pick to the next eligible seat or starts play once
// everyone has drafted.
func (s *Session) continueDraft() {
	d := s.Draft
	if d == nil {
		return
	}
	if len(d.Pool) == 0 {
		s.refillPool()
	}
	n := len(s.Players)
	for i := 0; i < n && len(d.Pool) > 0; i++ {
		p := s.Players[(d.seat+i)%n]
		if s.draftEligible(p) {
			d.seat = (d.seat + i) % n
			d.Drafter = p.ID
			return
		}
	}
	s.beginPlay()
}

// DraftProperty takes one space from the pool for free.
func (s *Session) DraftProperty(id int64, space int) ([]Event, error) {
	if s.Phase != PhaseDrafting || s.Draft == nil {
		return nil, invalid("no draft in progress")
	}
	p := s.Player(id)
	if p == nil {
		return nil, invalid("player %d is not seated", id)
	}
	if p.Bankrupt {
		return nil, ErrBankrupt
	}
	if s.Draft.Drafter != id {
		return nil, ErrNotYourTurn
	}
	if !slices.Contains(s.Draft.Pool, space) {
		return nil, invalid("space %d is not in the pool", space)
	}
	s.begin()
	s.pick(p, space, false)
	return s.commit(), nil
}

func (s *Session) pick(p *Player, space int, auto bool) {
	d := s.Draft
	d.Pool = slices.DeleteFunc(d.Pool, func(idx int) bool { return idx == space })
	s.assign(space, p)
	d.Picks++
	d.seat = (d.seat + 1) % len(s.Players)
	s.emit(EventDraftPicked, p.ID, map[string]any{"space": space, "auto": auto})
	s.continueDraft()
}

// autoDraft picks the first pool entry for a drafter who ran out of time.
func (s *Session) autoDraft() {
	d := s.Draft
	if d == nil || len(d.Pool) == 0 {
		return
	}
	p := s.Player(d.Drafter)
	if p == nil {
		return
	}
	s.pick(p, d.Pool[0], true)
}
