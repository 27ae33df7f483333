package game

import "testing"

func TestClassicDraft(t *testing.T) {
	s, _ := startedSession(t, ClassicRules(), 1500, 2)
	if s.Phase != PhaseDrafting || s.Draft == nil {
		t.Fatalf("phase = %s", s.Phase)
	}
	if len(s.Draft.Pool) != 6 || s.Draft.Drafter != 1 {
		t.Fatalf("draft = %+v", s.Draft)
	}
	for _, idx := range s.Draft.Pool {
		if !s.Board[idx].Ownable() {
			t.Fatalf("pool holds %s", s.Board[idx].Name)
		}
	}

	_, err := s.DraftProperty(2, s.Draft.Pool[0])
	wantErr(t, err, ErrNotYourTurn)
	_, err = s.DraftProperty(1, 0)
	wantErr(t, err, ErrInvalidAction)
	_, err = s.RollDice(1)
	wantErr(t, err, ErrInvalidAction)

	for s.Phase == PhaseDrafting {
		if _, err := s.DraftProperty(s.Draft.Drafter, s.Draft.Pool[len(s.Draft.Pool)-1]); err != nil {
			t.Fatalf("DraftProperty: %v", err)
		}
	}
	if s.Phase != PhaseActive || s.Turn != TurnAwaitingRoll || s.CurrentPlayerID() != 1 {
		t.Fatalf("phase=%s turn=%s current=%d", s.Phase, s.Turn, s.CurrentPlayerID())
	}
	for _, p := range s.Players {
		if len(p.Properties) != 2 || p.Cash != 1500 {
			t.Fatalf("player %d drafted %v with cash %d", p.ID, p.Properties, p.Cash)
		}
	}
	mustInvariants(t, s)
}

func TestDraftTimeoutPicksFirstEntry(t *testing.T) {
	s, _ := startedSession(t, ClassicRules(), 1500, 3)
	first := s.Draft.Pool[0]
	key, _, ok := s.TimerKey()
	if !ok || key.Kind != TimerDraft {
		t.Fatalf("timer = %+v", key)
	}
	if _, err := s.Expire(key); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if s.Board[first].Owner != 1 || s.Draft.Drafter != 2 {
		t.Fatalf("owner=%d drafter=%d", s.Board[first].Owner, s.Draft.Drafter)
	}
	_, err := s.Expire(key)
	wantErr(t, err, ErrStaleState)
}

func TestDraftSurvivesLeaver(t *testing.T) {
	s, _ := startedSession(t, ClassicRules(), 1500, 3)
	if _, err := s.RemovePlayer(1); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if s.Phase != PhaseDrafting || s.Draft.Drafter != 2 {
		t.Fatalf("phase=%s drafter=%d", s.Phase, s.Draft.Drafter)
	}
	for s.Phase == PhaseDrafting {
		if _, err := s.DraftProperty(s.Draft.Drafter, s.Draft.Pool[0]); err != nil {
			t.Fatalf("DraftProperty: %v", err)
		}
	}
	if s.CurrentPlayerID() != 2 {
		t.Fatalf("play should start with the first remaining seat, got %d", s.CurrentPlayerID())
	}
	mustInvariants(t, s)
}
