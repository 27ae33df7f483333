package game

import "slices"

// TradeOffer proposes swapping cash and spaces between two players.
type TradeOffer struct {
	From       int64 `json:"from"`
	To         int64 `json:"to"`
	FromCash   int64 `json:"from_cash"`
	ToCash     int64 `json:"to_cash"`
	FromSpaces []int `json:"from_spaces"`
	ToSpaces   []int `json:"to_spaces"`
}

func (o *TradeOffer) equal(other *TradeOffer) bool {
	return o.From == other.From && o.To == other.To &&
		o.FromCash == other.FromCash && o.ToCash == other.ToCash &&
		sameSet(o.FromSpaces, other.FromSpaces) && sameSet(o.ToSpaces, other.ToSpaces)
}

func sameSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

func (s *Session) findTrade(from, to int64) int {
	for i, t := range s.Trades {
		if t.From == from && t.To == to {
			return i
		}
	}
	return -1
}

func (s *Session) dropTrades(id int64) {
	s.Trades = slices.DeleteFunc(s.Trades, func(t *TradeOffer) bool {
		return t.From == id || t.To == id
	})
}

func (s *Session) validateTrade(o *TradeOffer) (from, to *Player, err error) {
	if s.Phase != PhaseActive {
		return nil, nil, invalid("trading is closed while %s", s.Phase)
	}
	if o.From == o.To {
		return nil, nil, invalid("cannot trade with yourself")
	}
	from, to = s.Player(o.From), s.Player(o.To)
	if from == nil || to == nil {
		return nil, nil, invalid("trade partner is not seated")
	}
	if from.Bankrupt || to.Bankrupt {
		return nil, nil, ErrBankrupt
	}
	if o.FromCash < 0 || o.ToCash < 0 {
		return nil, nil, invalid("negative cash in trade")
	}
	if o.FromCash == 0 && o.ToCash == 0 && len(o.FromSpaces) == 0 && len(o.ToSpaces) == 0 {
		return nil, nil, invalid("empty trade")
	}
	if from.Cash < o.FromCash || to.Cash < o.ToCash {
		return nil, nil, ErrInsufficientFunds
	}
	if err := s.checkTradeSpaces(from, o.FromSpaces); err != nil {
		return nil, nil, err
	}
	if err := s.checkTradeSpaces(to, o.ToSpaces); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func (s *Session) checkTradeSpaces(p *Player, spaces []int) error {
	seen := make(map[int]bool, len(spaces))
	for _, idx := range spaces {
		if seen[idx] {
			return invalid("space %d listed twice", idx)
		}
		seen[idx] = true
		if !s.owns(p, idx) {
			return invalid("space %d is not owned by %d", idx, p.ID)
		}
		if s.Board[idx].Houses > 0 {
			return invalid("space %d has improvements", idx)
		}
		if s.Auction != nil && s.Auction.Space == idx {
			return invalid("space %d is being auctioned", idx)
		}
	}
	return nil
}

// ProposeTrade stores an offer from one player to another, replacing any
// earlier offer between the same pair in the same direction.
func (s *Session) ProposeTrade(offer TradeOffer) ([]Event, error) {
	o := offer
	o.FromSpaces = slices.Clone(offer.FromSpaces)
	o.ToSpaces = slices.Clone(offer.ToSpaces)
	if _, _, err := s.validateTrade(&o); err != nil {
		return nil, err
	}
	s.begin()
	if i := s.findTrade(o.From, o.To); i >= 0 {
		s.Trades[i] = &o
	} else {
		s.Trades = append(s.Trades, &o)
	}
	s.emit(EventTradeProposed, o.From, map[string]any{"to": o.To, "offer": o})
	return s.commit(), nil
}

// AcceptTrade executes the stored offer. The caller echoes the offer they
// saw; a mismatch means it was replaced in the meantime.
func (s *Session) AcceptTrade(to, from int64, seen TradeOffer) ([]Event, error) {
	i := s.findTrade(from, to)
	if i < 0 {
		return nil, stale("no pending trade from %d", from)
	}
	o := s.Trades[i]
	seen.From, seen.To = from, to
	if !o.equal(&seen) {
		return nil, stale("trade offer changed")
	}
	fp, tp, err := s.validateTrade(o)
	if err != nil {
		return nil, err
	}
	s.begin()
	s.Trades = slices.Delete(s.Trades, i, i+1)
	fp.Cash -= o.FromCash
	tp.Cash += o.FromCash
	tp.Cash -= o.ToCash
	fp.Cash += o.ToCash
	for _, idx := range o.FromSpaces {
		s.assign(idx, tp)
	}
	for _, idx := range o.ToSpaces {
		s.assign(idx, fp)
	}
	s.emit(EventTradeCompleted, from, map[string]any{"to": to, "offer": *o})
	return s.commit(), nil
}

// DeclineTrade discards the pending offer from one player to another.
func (s *Session) DeclineTrade(to, from int64) ([]Event, error) {
	i := s.findTrade(from, to)
	if i < 0 {
		return nil, stale("no pending trade from %d", from)
	}
	s.begin()
	s.Trades = slices.Delete(s.Trades, i, i+1)
	s.emit(EventTradeDeclined, to, map[string]any{"from": from})
	return s.commit(), nil
}
