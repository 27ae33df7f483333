package game

import "testing"

func TestRentBankruptcyTransfersEverythingToCreditor(t *testing.T) {
	s, rnd := startedSession(t, classicNoDraft(), 1500, 3)
	a, b := s.Player(1), s.Player(2)

	setCash(t, s, a, 90)
	give(s, a, 1) // Mediterranean, face value 60
	give(s, b, 3)
	s.Board[3].Rent = []int64{150, 150, 150, 150, 150, 150}

	rnd.roll(1, 2)
	events, err := s.RollDice(1)
	if err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	if !hasEvent(events, EventPlayerBankrupt) {
		t.Fatalf("expected a bankruptcy event, got %+v", events)
	}
	if !a.Bankrupt || a.Cash != 0 || len(a.Properties) != 0 {
		t.Fatalf("debtor = %+v; want bankrupt with nothing left", a)
	}
	if b.Cash != 1590 {
		t.Fatalf("creditor cash = %d; want 1590", b.Cash)
	}
	if s.Board[1].Owner != b.ID {
		t.Fatalf("Mediterranean owner = %d; want %d", s.Board[1].Owner, b.ID)
	}
	if s.CurrentPlayerID() != b.ID || s.Turn != TurnAwaitingRoll {
		t.Fatalf("turn passed to %d in %s; want %d awaiting roll", s.CurrentPlayerID(), s.Turn, b.ID)
	}
	mustInvariants(t, s)
}

func TestTaxBankruptcyReturnsPropertiesToBank(t *testing.T) {
	s, rnd := startedSession(t, classicNoDraft(), 1500, 2)
	a := s.Player(1)
	setCash(t, s, a, 100)
	give(s, a, 1)

	rnd.roll(1, 3) // income tax
	if _, err := s.RollDice(1); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	if !a.Bankrupt {
		t.Fatalf("player should be bankrupt")
	}
	if s.Board[1].Owner != 0 {
		t.Fatalf("property should return to the bank, owner = %d", s.Board[1].Owner)
	}
	if s.Bank != 1500 {
		t.Fatalf("bank = %d; want 1500", s.Bank)
	}
	if s.Phase != PhaseFinished || s.Winner != 2 || s.EndReason != "last-player-standing" {
		t.Fatalf("phase=%s winner=%d reason=%s", s.Phase, s.Winner, s.EndReason)
	}
	mustInvariants(t, s)
}

func TestCheckInvariants(t *testing.T) {
	s, _ := startedSession(t, classicNoDraft(), 1500, 2)
	mustInvariants(t, s)

	s.Players[0].Cash++
	if err := s.CheckInvariants(); err == nil {
		t.Fatalf("created money went unnoticed")
	}
	s.Players[0].Cash--

	s.Board[5].Owner = 2
	if err := s.CheckInvariants(); err == nil {
		t.Fatalf("owner not listing the space went unnoticed")
	}
	s.Board[5].Owner = 0

	give(s, s.Players[0], 5)
	s.Players[1].Properties = append(s.Players[1].Properties, 5)
	if err := s.CheckInvariants(); err == nil {
		t.Fatalf("double ownership went unnoticed")
	}
}

func TestPayFromBankIsCapped(t *testing.T) {
	s, _ := startedSession(t, classicNoDraft(), 1500, 2)
	p := s.Player(1)
	setCash(t, s, p, 1400)

	if got := s.payFromBank(p, 250); got != 100 {
		t.Fatalf("payFromBank = %d; want 100", got)
	}
	if s.Bank != 0 || p.Cash != 1500 {
		t.Fatalf("bank=%d cash=%d", s.Bank, p.Cash)
	}
	if got := s.chargeCapped(p, 2000); got != 1500 {
		t.Fatalf("chargeCapped = %d; want 1500", got)
	}
	if p.Cash != 0 || p.Bankrupt {
		t.Fatalf("capped loss must not bankrupt: %+v", p)
	}
	mustInvariants(t, s)
}

func TestScaleAmount(t *testing.T) {
	cases := []struct {
		v, buyIn, base int64
		want           int64
	}{
		{200, 1500, 1500, 200},
		{200, 500, 1500, 67},
		{1, 100, 1500, 1},
		{0, 500, 1500, 0},
		{50, 2000, 1000, 100},
	}
	for _, tc := range cases {
		if got := scaleAmount(tc.v, tc.buyIn, tc.base); got != tc.want {
			t.Fatalf("scaleAmount(%d,%d,%d) = %d; want %d", tc.v, tc.buyIn, tc.base, got, tc.want)
		}
	}
}
