package game

import (
	"slices"
	"time"
)

type PlayerView struct {
	Player
	NetWorth int64 `json:"net_worth"`
}

// Snapshot is a self-contained copy of a session, safe to hand to other
// goroutines and sufficient for a client to render without history.
type Snapshot struct {
	ID            string       `json:"id"`
	Code          string       `json:"code"`
	Variant       VariantKind  `json:"variant"`
	Phase         Phase        `json:"phase"`
	Turn          TurnState    `json:"turn_state,omitempty"`
	HostID        int64        `json:"host_id"`
	IsPrivate     bool         `json:"is_private"`
	IsAnonymous   bool         `json:"is_anonymous"`
	BuyIn         int64        `json:"buy_in"`
	Pot           int64        `json:"pot"`
	Bank          int64        `json:"bank"`
	Players       []PlayerView `json:"players"`
	Board         []Space      `json:"board,omitempty"`
	CurrentPlayer int64        `json:"current_player,omitempty"`
	Direction     int          `json:"direction"`
	TurnNumber    int          `json:"turn_number"`
	Round         int          `json:"round"`
	MaxRounds     int          `json:"max_rounds"`
	Dice          Dice         `json:"dice"`
	PendingSpace  int          `json:"pending_space"`
	Auction       *Auction     `json:"auction,omitempty"`
	Choice        *WheelChoice `json:"choice,omitempty"`
	Trades        []TradeOffer `json:"trades,omitempty"`
	Draft         *Draft       `json:"draft,omitempty"`
	Winner        int64        `json:"winner,omitempty"`
	EndReason     string       `json:"end_reason,omitempty"`
	TimerSeconds  int          `json:"timer_seconds,omitempty"`
	TimerEndsAt   time.Time    `json:"timer_ends_at,omitzero"`
	CreatedAt     time.Time    `json:"created_at"`
	StartedAt     time.Time    `json:"started_at,omitzero"`
	TurnStartedAt time.Time    `json:"turn_started_at,omitzero"`
	Deadline      time.Time    `json:"deadline,omitzero"`
	EndedAt       time.Time    `json:"ended_at,omitzero"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:            s.ID,
		Code:          s.Code,
		Variant:       s.Variant,
		Phase:         s.Phase,
		Turn:          s.Turn,
		HostID:        s.HostID,
		IsPrivate:     s.IsPrivate,
		IsAnonymous:   s.IsAnonymous,
		BuyIn:         s.BuyIn,
		Pot:           s.Pot,
		Bank:          s.Bank,
		CurrentPlayer: s.CurrentPlayerID(),
		Direction:     s.Direction,
		TurnNumber:    s.TurnNumber,
		Round:         s.Round,
		MaxRounds:     s.rules.MaxRounds,
		Dice:          s.Dice,
		PendingSpace:  s.PendingSpace,
		Winner:        s.Winner,
		EndReason:     s.EndReason,
		CreatedAt:     s.CreatedAt,
		StartedAt:     s.StartedAt,
		TurnStartedAt: s.TurnStartedAt,
		Deadline:      s.Deadline,
		EndedAt:       s.EndedAt,
	}
	if _, d, ok := s.TimerKey(); ok {
		snap.TimerSeconds = int(d / time.Second)
	}
	for _, p := range s.Players {
		v := PlayerView{Player: *p}
		v.Properties = slices.Clone(p.Properties)
		v.NetWorth = s.NetWorth(p)
		snap.Players = append(snap.Players, v)
	}
	for _, sp := range s.Board {
		c := *sp
		c.Rent = slices.Clone(sp.Rent)
		snap.Board = append(snap.Board, c)
	}
	if s.Auction != nil {
		a := *s.Auction
		a.Passed = slices.Clone(s.Auction.Passed)
		snap.Auction = &a
	}
	if s.Choice != nil {
		c := *s.Choice
		c.Choices = slices.Clone(s.Choice.Choices)
		c.Outcome.Choices = slices.Clone(s.Choice.Outcome.Choices)
		snap.Choice = &c
	}
	for _, t := range s.Trades {
		c := *t
		c.FromSpaces = slices.Clone(t.FromSpaces)
		c.ToSpaces = slices.Clone(t.ToSpaces)
		snap.Trades = append(snap.Trades, c)
	}
	if s.Draft != nil {
		d := *s.Draft
		d.Pool = slices.Clone(s.Draft.Pool)
		snap.Draft = &d
	}
	return snap
}

// Standings returns the net worth of every seated player.
func (s *Session) Standings() map[int64]int64 {
	out := make(map[int64]int64, len(s.Players))
	for _, p := range s.Players {
		out[p.ID] = s.NetWorth(p)
	}
	return out
}
