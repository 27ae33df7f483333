package game

// Auction is the open bidding on one unowned space.
type Auction struct {
	Space         int     `json:"space"`
	StartingPrice int64   `json:"starting_price"`
	CurrentBid    int64   `json:"current_bid"`
	Bidder        int64   `json:"bidder,omitempty"`
	Passed        []int64 `json:"passed"`
	Bids          int     `json:"bids"`
}

func (a *Auction) hasPassed(id int64) bool {
	for _, p := range a.Passed {
		if p == id {
			return true
		}
	}
	return false
}

func (s *Session) openAuction(space int) {
	sp := s.Board[space]
	start := sp.Price * s.rules.AuctionStartPercent / 100
	if start < 1 {
		start = 1
	}
	s.Auction = &Auction{Space: space, StartingPrice: start}
	s.Turn = TurnAuction
	s.PendingSpace = space
	s.emit(EventAuctionStarted, s.current().ID, map[string]any{
		"space":          space,
		"starting_price": start,
	})
}

func (s *Session) auctionPlayer(id int64) (*Player, error) {
	if s.Phase != PhaseActive || s.Auction == nil {
		return nil, stale("no auction in progress")
	}
	p := s.Player(id)
	if p == nil {
		return nil, invalid("player %d is not seated", id)
	}
	if p.Bankrupt {
		return nil, ErrBankrupt
	}
	return p, nil
}

// PlaceBid raises the high bid. Any active player may bid.
func (s *Session) PlaceBid(id int64, amount int64) ([]Event, error) {
	p, err := s.auctionPlayer(id)
	if err != nil {
		return nil, err
	}
	a := s.Auction
	if a.hasPassed(id) {
		return nil, invalid("already passed")
	}
	if amount <= a.CurrentBid {
		return nil, invalid("bid %d must exceed %d", amount, a.CurrentBid)
	}
	if amount < a.StartingPrice {
		return nil, invalid("bid %d is below the starting price %d", amount, a.StartingPrice)
	}
	if amount > p.Cash {
		return nil, ErrInsufficientFunds
	}
	s.begin()
	a.CurrentBid = amount
	a.Bidder = id
	a.Bids++
	a.Passed = nil
	s.emit(EventAuctionBid, id, map[string]any{"space": a.Space, "amount": amount})
	s.maybeCloseAuction()
	return s.commit(), nil
}

// PassAuction withdraws the caller from the current bidding round.
func (s *Session) PassAuction(id int64) ([]Event, error) {
	if _, err := s.auctionPlayer(id); err != nil {
		return nil, err
	}
	a := s.Auction
	if a.Bidder == id {
		return nil, invalid("the high bidder cannot pass")
	}
	if a.hasPassed(id) {
		return nil, invalid("already passed")
	}
	s.begin()
	a.Passed = append(a.Passed, id)
	s.emit(EventAuctionPassed, id, map[string]any{"space": a.Space})
	s.maybeCloseAuction()
	return s.commit(), nil
}

// auctionDrop removes a departed player from the bidding.
func (s *Session) auctionDrop(p *Player) {
	a := s.Auction
	if a.Bidder == p.ID {
		a.Bidder = 0
		a.CurrentBid = 0
	}
	s.maybeCloseAuction()
}

func (s *Session) maybeCloseAuction() {
	a := s.Auction
	if a == nil {
		return
	}
	for _, p := range s.activePlayers() {
		if p.ID != a.Bidder && !a.hasPassed(p.ID) {
			return
		}
	}
	s.closeAuction()
}

// closeAuction awards the space to the high bidder, or leaves it unowned.
func (s *Session) closeAuction() {
	a := s.Auction
	if a == nil {
		return
	}
	s.Auction = nil
	data := map[string]any{"space": a.Space, "amount": int64(0)}
	winner := s.Player(a.Bidder)
	if winner != nil && !winner.Bankrupt && s.payBank(winner, a.CurrentBid) == nil {
		s.assign(a.Space, winner)
		data["amount"] = a.CurrentBid
		s.emit(EventAuctionCompleted, winner.ID, data)
	} else {
		s.emit(EventAuctionCompleted, 0, data)
	}
	if s.Phase == PhaseActive && s.Turn == TurnAuction {
		s.Turn = TurnAwaitingEnd
		s.PendingSpace = -1
	}
}
