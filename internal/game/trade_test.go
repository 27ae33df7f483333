package game

import "testing"

func TestTrade(t *testing.T) {
	s, _ := startedSession(t, classicNoDraft(), 1500, 3)
	a, b := s.Player(1), s.Player(2)
	give(s, a, 1)
	give(s, b, 3)

	offer := TradeOffer{From: 1, To: 2, FromCash: 100, FromSpaces: []int{1}, ToSpaces: []int{3}}
	if _, err := s.ProposeTrade(offer); err != nil {
		t.Fatalf("ProposeTrade: %v", err)
	}

	changed := offer
	changed.FromCash = 10
	_, err := s.AcceptTrade(2, 1, changed)
	wantErr(t, err, ErrStaleState)

	// trades do not depend on whose turn it is
	if _, err := s.AcceptTrade(2, 1, TradeOffer{FromCash: 100, FromSpaces: []int{1}, ToSpaces: []int{3}}); err != nil {
		t.Fatalf("AcceptTrade: %v", err)
	}
	if a.Cash != 1400 || b.Cash != 1600 {
		t.Fatalf("cash %d / %d", a.Cash, b.Cash)
	}
	if s.Board[1].Owner != 2 || s.Board[3].Owner != 1 {
		t.Fatalf("owners %d / %d", s.Board[1].Owner, s.Board[3].Owner)
	}
	if len(s.Trades) != 0 {
		t.Fatalf("trade still pending")
	}
	_, err = s.AcceptTrade(2, 1, offer)
	wantErr(t, err, ErrStaleState)
	mustInvariants(t, s)
}

func TestTradeValidation(t *testing.T) {
	s, _ := startedSession(t, classicNoDraft(), 1500, 2)
	give(s, s.Player(1), 1)

	cases := []struct {
		name  string
		offer TradeOffer
		want  error
	}{
		{"self", TradeOffer{From: 1, To: 1, FromCash: 1}, ErrInvalidAction},
		{"empty", TradeOffer{From: 1, To: 2}, ErrInvalidAction},
		{"not owned", TradeOffer{From: 1, To: 2, FromSpaces: []int{3}}, ErrInvalidAction},
		{"too much cash", TradeOffer{From: 1, To: 2, FromCash: 5000}, ErrInsufficientFunds},
		{"stranger", TradeOffer{From: 1, To: 9, FromCash: 1}, ErrInvalidAction},
	}
	for _, tc := range cases {
		_, err := s.ProposeTrade(tc.offer)
		if err == nil {
			t.Fatalf("%s: accepted", tc.name)
		}
		wantErr(t, err, tc.want)
	}
}

func TestTradeRevalidatedOnAccept(t *testing.T) {
	s, _ := startedSession(t, classicNoDraft(), 1500, 2)
	give(s, s.Player(1), 1)
	offer := TradeOffer{From: 1, To: 2, FromSpaces: []int{1}, ToCash: 200}
	if _, err := s.ProposeTrade(offer); err != nil {
		t.Fatalf("ProposeTrade: %v", err)
	}
	setCash(t, s, s.Player(2), 100)
	_, err := s.AcceptTrade(2, 1, offer)
	wantErr(t, err, ErrInsufficientFunds)

	if _, err := s.DeclineTrade(2, 1); err != nil {
		t.Fatalf("DeclineTrade: %v", err)
	}
	_, err = s.DeclineTrade(2, 1)
	wantErr(t, err, ErrStaleState)
}

func TestProposeReplacesEarlierOffer(t *testing.T) {
	s, _ := startedSession(t, classicNoDraft(), 1500, 2)
	s.ProposeTrade(TradeOffer{From: 1, To: 2, FromCash: 10})
	s.ProposeTrade(TradeOffer{From: 1, To: 2, FromCash: 20})
	if len(s.Trades) != 1 || s.Trades[0].FromCash != 20 {
		t.Fatalf("trades = %+v", s.Trades)
	}
}
