package game

import "time"

type TimerKind string

const (
	TimerRoll     TimerKind = "roll"
	TimerDecision TimerKind = "decision"
	TimerDraft    TimerKind = "draft"
)

// TimerKey identifies the decision a countdown was armed for. A timer whose
// key no longer matches the session has been overtaken by a player action.
type TimerKey struct {
	Kind  TimerKind
	Turn  int
	State TurnState
	Pick  int
	Bids  int
}

// turnPlayer returns the caller if it is their turn to act.
func (s *Session) turnPlayer(id int64) (*Player, error) {
	if s.Phase != PhaseActive {
		return nil, invalid("session is %s", s.Phase)
	}
	p := s.Player(id)
	if p == nil {
		return nil, invalid("player %d is not seated", id)
	}
	if p.Bankrupt {
		return nil, ErrBankrupt
	}
	if s.current().ID != id {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// RollDice rolls for the active player, moves them and resolves the landing.
func (s *Session) RollDice(id int64) ([]Event, error) {
	p, err := s.turnPlayer(id)
	if err != nil {
		return nil, err
	}
	if s.Turn != TurnAwaitingRoll {
		return nil, invalid("already rolled this turn")
	}
	s.begin()
	s.Dice = rollDice(s.rng)
	s.emit(EventDiceRolled, p.ID, map[string]any{
		"dice":   s.Dice,
		"total":  s.Dice.Total(),
		"double": s.Dice.IsDouble(),
	})

	if p.InJail {
		if !s.rollInJail(p) {
			return s.commit(), nil
		}
	}
	s.moveBy(p, s.Dice.Total())
	s.resolveLanding(p)
	return s.commit(), nil
}

// rollInJail reports whether the player leaves jail and moves this turn.
func (s *Session) rollInJail(p *Player) bool {
	if s.Dice.IsDouble() {
		p.InJail = false
		p.JailTurns = 0
		s.emit(EventJailReleased, p.ID, map[string]any{"reason": "double"})
		return true
	}
	p.JailTurns++
	if p.JailTurns < s.rules.MaxJailTurns {
		s.Turn = TurnAwaitingEnd
		s.emit(EventJailStay, p.ID, map[string]any{"jail_turns": p.JailTurns})
		return false
	}
	bail := s.scale(s.rules.JailBail)
	if !s.settleDebt(p, nil, bail, "bail") {
		s.settleTurnState()
		return false
	}
	p.InJail = false
	p.JailTurns = 0
	s.emit(EventJailReleased, p.ID, map[string]any{"reason": "bail", "amount": bail})
	return true
}

func (s *Session) moveBy(p *Player, steps int) {
	n := len(s.Board)
	from := p.Position
	to := (from + steps) % n
	p.Position = to
	s.emit(EventMoved, p.ID, map[string]any{"from": from, "to": to})
	if from+steps >= n {
		s.passGo(p)
	}
}

// moveTo relocates p. With collect set, reaching or wrapping past GO pays income.
func (s *Session) moveTo(p *Player, to int, collect bool) {
	from := p.Position
	p.Position = to
	s.emit(EventMoved, p.ID, map[string]any{"from": from, "to": to})
	if collect && (to == 0 || to < from) {
		s.passGo(p)
	}
}

func (s *Session) passGo(p *Player) {
	paid := s.payFromBank(p, s.scale(s.rules.GoIncome))
	s.emit(EventPassedGo, p.ID, map[string]any{"amount": paid})
}

func (s *Session) resolveLanding(p *Player) {
	s.Turn = TurnResolvingLanding
	s.land(p)
	s.settleTurnState()
}

func (s *Session) land(p *Player) {
	s.PendingSpace = p.Position
	sp := s.Board[p.Position]
	s.emit(EventLanded, p.ID, map[string]any{"space": sp.Index, "name": sp.Name, "space_type": sp.Type})
	s.rules.Resolver.Resolve(s, p)
}

// settleTurnState moves the turn out of resolving-landing once no
// sub-protocol is pending, and advances past a current player who went bankrupt.
func (s *Session) settleTurnState() {
	if s.checkFinished() {
		return
	}
	if s.current().Bankrupt {
		s.advance()
		return
	}
	if s.Turn == TurnResolvingLanding {
		s.Turn = TurnAwaitingEnd
		s.PendingSpace = -1
	}
}

func (s *Session) landOnOwnable(p *Player, sp *Space) {
	if sp.Owner == 0 {
		if p.Cash >= sp.Price {
			s.Turn = TurnAwaitingPurchase
			s.PendingSpace = sp.Index
			s.emit(EventPurchaseOffered, p.ID, map[string]any{"space": sp.Index, "price": sp.Price})
			return
		}
		s.openAuction(sp.Index)
		return
	}
	if sp.Owner == p.ID {
		return
	}
	owner := s.Player(sp.Owner)
	if owner == nil || owner.Bankrupt {
		return
	}
	if sp.blocked(s.TurnNumber) {
		s.emit(EventRentWaived, p.ID, map[string]any{"space": sp.Index, "reason": "blocked"})
		return
	}
	if p.Shield {
		p.Shield = false
		s.emit(EventRentWaived, p.ID, map[string]any{"space": sp.Index, "reason": "shield"})
		return
	}
	rent := s.rentFor(sp, owner)
	if owner.RentPercent > 0 {
		rent = rent * owner.RentPercent / 100
		owner.RentPercent = 0
	}
	if rent <= 0 {
		return
	}
	if !s.settleDebt(p, owner, rent, "rent") {
		return
	}
	p.lastRentPaid = rent
	s.emit(EventRentPaid, p.ID, map[string]any{"space": sp.Index, "owner": owner.ID, "amount": rent})
}

func (s *Session) rentFor(sp *Space, owner *Player) int64 {
	switch sp.Type {
	case SpaceRailroad:
		n := s.countOwned(owner, SpaceRailroad)
		if n == 0 || len(sp.Rent) == 0 {
			return 0
		}
		return sp.Rent[min(n, len(sp.Rent))-1]
	case SpaceUtility:
		mult := 4
		if s.countOwned(owner, SpaceUtility) >= 2 {
			mult = 10
		}
		return s.scale(int64(s.Dice.Total() * mult))
	}
	if len(sp.Rent) == 0 {
		return 0
	}
	if sp.Houses > 0 {
		return sp.Rent[min(sp.Houses, len(sp.Rent)-1)]
	}
	rent := sp.Rent[0]
	if s.rules.MonopolyDoublesRent && s.hasMonopoly(owner.ID, sp.Group) {
		rent *= 2
	}
	return rent
}

func (s *Session) countOwned(p *Player, t SpaceType) int {
	n := 0
	for _, idx := range p.Properties {
		if s.Board[idx].Type == t {
			n++
		}
	}
	return n
}

func (s *Session) chargeTax(p *Player, sp *Space) {
	if s.settleDebt(p, nil, sp.Amount, "tax") {
		s.emit(EventTaxPaid, p.ID, map[string]any{"space": sp.Index, "amount": sp.Amount})
	}
}

func (s *Session) sendToJail(p *Player) {
	if s.rules.JailIndex < 0 {
		return
	}
	p.Position = s.rules.JailIndex
	p.InJail = true
	p.JailTurns = 0
	s.emit(EventJailed, p.ID, map[string]any{"space": s.rules.JailIndex})
}

// BuyProperty buys the space offered after landing.
func (s *Session) BuyProperty(id int64, space int) ([]Event, error) {
	p, err := s.turnPlayer(id)
	if err != nil {
		return nil, err
	}
	if s.Turn != TurnAwaitingPurchase {
		return nil, stale("no purchase pending")
	}
	if space != s.PendingSpace {
		return nil, invalid("space %d is not on offer", space)
	}
	sp := s.Board[space]
	if p.Cash < sp.Price {
		return nil, ErrInsufficientFunds
	}
	s.begin()
	if err := s.payBank(p, sp.Price); err != nil {
		return nil, err
	}
	s.assign(space, p)
	s.Turn = TurnAwaitingEnd
	s.PendingSpace = -1
	s.emit(EventPropertyBought, p.ID, map[string]any{"space": space, "price": sp.Price})
	return s.commit(), nil
}

// AuctionProperty declines the purchase offer and opens an auction instead.
func (s *Session) AuctionProperty(id int64, space int) ([]Event, error) {
	p, err := s.turnPlayer(id)
	if err != nil {
		return nil, err
	}
	if s.Turn != TurnAwaitingPurchase {
		return nil, stale("no purchase pending")
	}
	if space != s.PendingSpace {
		return nil, invalid("space %d is not on offer", space)
	}
	s.begin()
	s.emit(EventPurchaseDeclined, p.ID, map[string]any{"space": space})
	s.openAuction(space)
	return s.commit(), nil
}

// BuildImprovement adds one improvement to an owned property.
func (s *Session) BuildImprovement(id int64, space int) ([]Event, error) {
	p, err := s.turnPlayer(id)
	if err != nil {
		return nil, err
	}
	if s.Turn != TurnAwaitingRoll && s.Turn != TurnAwaitingEnd {
		return nil, invalid("cannot build while %s", s.Turn)
	}
	if !s.owns(p, space) {
		return nil, invalid("space %d is not yours", space)
	}
	sp := s.Board[space]
	if sp.Type != SpaceProperty {
		return nil, invalid("%s cannot be improved", sp.Name)
	}
	if s.rules.BuildNeedsMonopoly && !s.hasMonopoly(p.ID, sp.Group) {
		return nil, invalid("building on %s needs the whole %s group", sp.Name, sp.Group)
	}
	if sp.Houses >= s.rules.MaxHouses {
		return nil, invalid("%s is fully improved", sp.Name)
	}
	free := p.FreeHouses > 0
	if !free && p.Cash < sp.HousePrice {
		return nil, ErrInsufficientFunds
	}
	s.begin()
	var cost int64
	if free {
		p.FreeHouses--
	} else {
		cost = sp.HousePrice
		if err := s.payBank(p, cost); err != nil {
			return nil, err
		}
	}
	sp.Houses++
	s.emit(EventImprovementBuilt, p.ID, map[string]any{
		"space":  space,
		"houses": sp.Houses,
		"cost":   cost,
		"free":   free,
	})
	return s.commit(), nil
}

// EndTurn hands the turn to the next player.
func (s *Session) EndTurn(id int64) ([]Event, error) {
	if _, err := s.turnPlayer(id); err != nil {
		return nil, err
	}
	if s.Turn != TurnAwaitingEnd {
		return nil, invalid("cannot end turn while %s", s.Turn)
	}
	s.begin()
	s.advance()
	return s.commit(), nil
}

// advance moves to the next non-bankrupt player in the current direction,
// consuming frozen turns and counting rounds.
func (s *Session) advance() {
	s.Turn = TurnComplete
	s.Auction = nil
	s.Choice = nil
	s.PendingSpace = -1
	s.Dice = Dice{}
	if s.checkFinished() {
		return
	}

	n := len(s.Players)
	idx := s.Current
	for {
		next := (idx + s.Direction + n) % n
		if (s.Direction > 0 && next <= idx) || (s.Direction < 0 && next >= idx) {
			s.Round++
		}
		idx = next
		p := s.Players[idx]
		if p.Bankrupt {
			continue
		}
		if p.Frozen {
			p.Frozen = false
			s.emit(EventTurnSkipped, p.ID, map[string]any{"reason": "frozen"})
			continue
		}
		break
	}
	if s.rules.MaxRounds > 0 && s.Round > s.rules.MaxRounds {
		s.finish(s.richest(), "rounds")
		return
	}

	s.Current = idx
	s.TurnNumber++
	for _, sp := range s.Board {
		if sp.BlockedUntilTurn != 0 && sp.BlockedUntilTurn <= s.TurnNumber {
			sp.BlockedUntilTurn = 0
		}
	}
	s.Turn = TurnAwaitingRoll
	s.TurnStartedAt = s.now()
	s.emit(EventTurnStarted, s.Players[idx].ID, map[string]any{"turn": s.TurnNumber, "round": s.Round})
}

// TimerKey reports the countdown the session currently needs, if any.
func (s *Session) TimerKey() (TimerKey, time.Duration, bool) {
	switch s.Phase {
	case PhaseDrafting:
		if s.Draft == nil || s.rules.DecisionTimeout <= 0 {
			return TimerKey{}, 0, false
		}
		return TimerKey{Kind: TimerDraft, Pick: s.Draft.Picks}, s.rules.DecisionTimeout, true
	case PhaseActive:
		if s.Turn == TurnAwaitingRoll {
			if s.rules.TurnTimeout <= 0 {
				return TimerKey{}, 0, false
			}
			return TimerKey{Kind: TimerRoll, Turn: s.TurnNumber, State: s.Turn}, s.rules.TurnTimeout, true
		}
		if s.rules.DecisionTimeout <= 0 {
			return TimerKey{}, 0, false
		}
		key := TimerKey{Kind: TimerDecision, Turn: s.TurnNumber, State: s.Turn}
		if s.Auction != nil {
			// every bid restarts the countdown
			key.Bids = s.Auction.Bids
		}
		return key, s.rules.DecisionTimeout, true
	}
	return TimerKey{}, 0, false
}

// Expire applies a timer expiry. It fails with ErrStaleState when a player
// action already moved the session past the decision the timer was armed for.
func (s *Session) Expire(key TimerKey) ([]Event, error) {
	cur, _, ok := s.TimerKey()
	if !ok || cur != key {
		return nil, stale("timer %s for turn %d already resolved", key.Kind, key.Turn)
	}
	s.begin()
	switch key.Kind {
	case TimerDraft:
		s.autoDraft()
	case TimerRoll:
		p := s.current()
		penalty := s.chargeCapped(p, s.scale(s.rules.TimeoutPenalty))
		s.emit(EventTurnTimedOut, p.ID, map[string]any{"kind": key.Kind, "penalty": penalty})
		s.advance()
	case TimerDecision:
		p := s.current()
		s.emit(EventTurnTimedOut, p.ID, map[string]any{"kind": key.Kind, "state": key.State})
		s.forceResolve()
		if s.Phase == PhaseActive {
			s.advance()
		}
	}
	return s.commit(), nil
}

// forceResolve closes whatever the current player left pending, taking the
// conservative branch of every decision.
func (s *Session) forceResolve() {
	switch s.Turn {
	case TurnAwaitingPurchase:
		s.emit(EventPurchaseDeclined, s.current().ID, map[string]any{"space": s.PendingSpace, "reason": "timeout"})
	case TurnAuction:
		s.closeAuction()
	case TurnAwaitingChoice:
		s.expireChoice()
	}
	if s.Phase == PhaseActive && s.Turn != TurnAwaitingRoll {
		s.Turn = TurnAwaitingEnd
		s.PendingSpace = -1
	}
}
