package game

import (
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseDrafting Phase = "drafting"
	PhaseActive   Phase = "active"
	PhaseFinished Phase = "finished"
)

type TurnState string

const (
	TurnAwaitingRoll     TurnState = "awaiting-roll"
	TurnResolvingLanding TurnState = "resolving-landing"
	TurnAwaitingPurchase TurnState = "awaiting-purchase-decision"
	TurnAuction          TurnState = "auction-in-progress"
	TurnAwaitingChoice   TurnState = "awaiting-wheel-choice"
	TurnAwaitingEnd      TurnState = "awaiting-build-or-end"
	TurnComplete         TurnState = "turn-complete"
)

var (
	AnonNames    = []string{"Lucky", "Star", "Ace", "Flash"}
	PlayerColors = []string{"#e74c3c", "#3498db", "#2ecc71", "#f39c12"}
)

type Player struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Cash        int64  `json:"cash"`
	Position    int    `json:"position"`
	Properties  []int  `json:"properties"`
	InJail      bool   `json:"in_jail,omitempty"`
	JailTurns   int    `json:"jail_turns,omitempty"`
	Bankrupt    bool   `json:"bankrupt"`
	Connected   bool   `json:"connected"`
	Shield      bool   `json:"shield,omitempty"`
	Frozen      bool   `json:"frozen,omitempty"`
	RentPercent int64  `json:"rent_percent,omitempty"`
	Streak      int    `json:"streak,omitempty"`
	FreeHouses  int    `json:"free_houses,omitempty"`

	lastRentPaid int64
}

// Session is the authoritative state of one room. It is not safe for
// concurrent use: every call must come from the goroutine that owns it.
type Session struct {
	ID          string
	Code        string
	Variant     VariantKind
	Phase       Phase
	Turn        TurnState
	HostID      int64
	IsPrivate   bool
	IsAnonymous bool

	BuyIn int64
	Pot   int64
	Bank  int64

	Players      []*Player
	Board        []*Space
	Current      int
	Direction    int
	TurnNumber   int
	Round        int
	Dice         Dice
	PendingSpace int

	Auction *Auction
	Choice  *WheelChoice
	Trades  []*TradeOffer
	Draft   *Draft

	Winner    int64
	EndReason string

	CreatedAt     time.Time
	StartedAt     time.Time
	TurnStartedAt time.Time
	EndedAt       time.Time
	Deadline      time.Time

	rules  *Rules
	rng    Random
	now    func() time.Time
	events []Event
}

type Option func(*Session)

func WithRandom(r Random) Option {
	return func(s *Session) { s.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

func Anonymous() Option {
	return func(s *Session) { s.IsAnonymous = true }
}

func Private() Option {
	return func(s *Session) { s.IsPrivate = true }
}

func NewSession(code string, rules *Rules, buyIn int64, opts ...Option) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		Code:         code,
		Variant:      rules.Variant,
		Phase:        PhaseLobby,
		BuyIn:        buyIn,
		Direction:    1,
		PendingSpace: -1,
		rules:        rules,
		rng:          CryptoRandom{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.CreatedAt = s.now()
	return s
}

func (s *Session) Rules() *Rules {
	return s.rules
}

func (s *Session) Player(id int64) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) current() *Player {
	if len(s.Players) == 0 {
		return nil
	}
	return s.Players[s.Current]
}

// CurrentPlayerID returns 0 outside of play.
func (s *Session) CurrentPlayerID() int64 {
	if s.Phase != PhaseActive {
		return 0
	}
	return s.current().ID
}

func (s *Session) activePlayers() []*Player {
	var out []*Player
	for _, p := range s.Players {
		if !p.Bankrupt {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) opponents(p *Player) []*Player {
	var out []*Player
	for _, o := range s.Players {
		if o.ID != p.ID && !o.Bankrupt {
			out = append(out, o)
		}
	}
	return out
}

func (s *Session) scale(v int64) int64 {
	return scaleAmount(v, s.BuyIn, s.rules.BaseBankroll)
}

// NetWorth is cash plus the face value of properties and improvements.
func (s *Session) NetWorth(p *Player) int64 {
	total := p.Cash
	for _, idx := range p.Properties {
		sp := s.Board[idx]
		total += sp.Price + int64(sp.Houses)*sp.HousePrice
	}
	return total
}

func (s *Session) richest() int64 {
	var best *Player
	var bestWorth int64
	for _, p := range s.activePlayers() {
		w := s.NetWorth(p)
		if best == nil || w > bestWorth {
			best, bestWorth = p, w
		}
	}
	if best == nil {
		return 0
	}
	return best.ID
}

// AddPlayer seats a player in the lobby.
func (s *Session) AddPlayer(id int64, name string) ([]Event, error) {
	if s.Phase != PhaseLobby {
		return nil, ErrAlreadyStarted
	}
	if s.Player(id) != nil {
		return nil, invalid("player %d already joined", id)
	}
	if len(s.Players) >= s.rules.MaxPlayers {
		return nil, ErrRoomFull
	}
	seat := len(s.Players)
	if s.IsAnonymous || name == "" {
		name = AnonNames[seat%len(AnonNames)]
	}
	s.begin()
	p := &Player{
		ID:        id,
		Name:      name,
		Color:     PlayerColors[seat%len(PlayerColors)],
		Connected: true,
	}
	s.Players = append(s.Players, p)
	if s.HostID == 0 {
		s.HostID = id
	}
	s.emit(EventPlayerJoined, id, map[string]any{"name": name, "seat": seat})
	return s.commit(), nil
}

// Start moves the lobby into the draft or straight into play. Every seated
// player must already have paid the buy-in.
func (s *Session) Start() ([]Event, error) {
	if s.Phase != PhaseLobby {
		return nil, ErrAlreadyStarted
	}
	if len(s.Players) < s.rules.MinPlayers {
		return nil, invalid("need at least %d players", s.rules.MinPlayers)
	}
	s.begin()
	s.Board = newBoard(s.rules.Board, s.BuyIn, s.rules.BaseBankroll)
	for _, p := range s.Players {
		p.Cash = s.BuyIn
		p.Position = 0
	}
	s.Pot = s.BuyIn * int64(len(s.Players))
	s.Bank = 0
	s.StartedAt = s.now()
	if s.rules.SessionLength > 0 {
		s.Deadline = s.StartedAt.Add(s.rules.SessionLength)
	}
	s.emit(EventGameStarted, 0, map[string]any{
		"variant": s.Variant,
		"pot":     s.Pot,
		"players": len(s.Players),
	})
	if s.rules.Draft {
		s.startDraft()
	} else {
		s.beginPlay()
	}
	return s.commit(), nil
}

func (s *Session) beginPlay() {
	s.Phase = PhaseActive
	s.Draft = nil
	s.Current = 0
	for s.Players[s.Current].Bankrupt {
		s.Current++
	}
	s.TurnNumber = 1
	s.Round = 1
	s.Turn = TurnAwaitingRoll
	s.TurnStartedAt = s.now()
	s.emit(EventTurnStarted, s.current().ID, map[string]any{"turn": s.TurnNumber, "round": s.Round})
}

// SetConnected records transport presence. It never changes the economy.
func (s *Session) SetConnected(id int64, connected bool) ([]Event, error) {
	p := s.Player(id)
	if p == nil {
		return nil, invalid("player %d is not seated", id)
	}
	if p.Connected == connected {
		return nil, nil
	}
	s.begin()
	p.Connected = connected
	s.emit(EventPlayerConnection, id, map[string]any{"connected": connected})
	return s.commit(), nil
}

// RemovePlayer takes a player out of the session. In the lobby the seat is
// freed; once play started the player forfeits everything to the bank.
func (s *Session) RemovePlayer(id int64) ([]Event, error) {
	p := s.Player(id)
	if p == nil {
		return nil, invalid("player %d is not seated", id)
	}
	s.begin()
	switch s.Phase {
	case PhaseLobby:
		s.removeSeat(id)
		s.emit(EventPlayerLeft, id, nil)
		return s.commit(), nil
	case PhaseFinished:
		p.Connected = false
		s.emit(EventPlayerLeft, id, nil)
		return s.commit(), nil
	}

	p.Connected = false
	s.emit(EventPlayerLeft, id, nil)
	if p.Bankrupt {
		return s.commit(), nil
	}

	wasCurrent := s.Phase == PhaseActive && s.current().ID == id
	if wasCurrent {
		s.forceResolve()
	}
	s.eliminate(p, nil, "left")
	if s.Auction != nil {
		s.auctionDrop(p)
	}

	if s.checkFinished() {
		return s.commit(), nil
	}
	switch s.Phase {
	case PhaseActive:
		if wasCurrent {
			s.advance()
		}
	case PhaseDrafting:
		s.continueDraft()
	}
	return s.commit(), nil
}

func (s *Session) removeSeat(id int64) {
	kept := s.Players[:0]
	for _, p := range s.Players {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.Players = kept
	for i, p := range s.Players {
		p.Color = PlayerColors[i%len(PlayerColors)]
		if s.IsAnonymous {
			p.Name = AnonNames[i%len(AnonNames)]
		}
	}
	if s.HostID == id {
		s.HostID = 0
		if len(s.Players) > 0 {
			s.HostID = s.Players[0].ID
		}
	}
}

func (s *Session) finish(winner int64, reason string) {
	s.Phase = PhaseFinished
	s.Turn = ""
	s.Auction = nil
	s.Choice = nil
	s.Trades = nil
	s.Draft = nil
	s.PendingSpace = -1
	s.Winner = winner
	s.EndReason = reason
	s.EndedAt = s.now()

	standings := make([]map[string]any, 0, len(s.Players))
	for _, p := range s.Players {
		standings = append(standings, map[string]any{
			"player_id": p.ID,
			"net_worth": s.NetWorth(p),
			"bankrupt":  p.Bankrupt,
		})
	}
	s.emit(EventGameOver, winner, map[string]any{
		"reason":    reason,
		"pot":       s.Pot,
		"standings": standings,
	})
}

// checkFinished ends the session when at most one player is left or the
// wall-clock budget is spent.
func (s *Session) checkFinished() bool {
	if s.Phase == PhaseFinished {
		return true
	}
	if s.Phase != PhaseActive && s.Phase != PhaseDrafting {
		return false
	}
	active := s.activePlayers()
	if len(active) <= 1 {
		var winner int64
		if len(active) == 1 {
			winner = active[0].ID
		}
		s.finish(winner, "last-player-standing")
		return true
	}
	if !s.Deadline.IsZero() && !s.now().Before(s.Deadline) {
		s.finish(s.richest(), "time")
		return true
	}
	return false
}

// ExpireSession ends the session once its wall-clock budget is exhausted.
func (s *Session) ExpireSession() ([]Event, error) {
	if s.Phase != PhaseActive && s.Phase != PhaseDrafting {
		return nil, stale("session is %s", s.Phase)
	}
	if s.Deadline.IsZero() || s.now().Before(s.Deadline) {
		return nil, stale("session deadline not reached")
	}
	s.begin()
	s.finish(s.richest(), "time")
	return s.commit(), nil
}
