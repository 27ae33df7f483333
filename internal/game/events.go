package game

type EventKind string

const (
	EventPlayerJoined     EventKind = "player_joined"
	EventPlayerLeft       EventKind = "player_left"
	EventPlayerConnection EventKind = "player_connection"
	EventGameStarted      EventKind = "game_started"
	EventDraftPicked      EventKind = "draft_picked"
	EventTurnStarted      EventKind = "turn_started"
	EventTurnTimedOut     EventKind = "turn_timed_out"
	EventTurnSkipped      EventKind = "turn_skipped"
	EventDiceRolled       EventKind = "dice_rolled"
	EventMoved            EventKind = "moved"
	EventPassedGo         EventKind = "passed_go"
	EventLanded           EventKind = "landed"
	EventJailed           EventKind = "jailed"
	EventJailStay         EventKind = "jail_stay"
	EventJailReleased     EventKind = "jail_released"
	EventPurchaseOffered  EventKind = "purchase_offered"
	EventPurchaseDeclined EventKind = "purchase_declined"
	EventPropertyBought   EventKind = "property_bought"
	EventAuctionStarted   EventKind = "auction_started"
	EventAuctionBid       EventKind = "auction_bid"
	EventAuctionPassed    EventKind = "auction_passed"
	EventAuctionCompleted EventKind = "auction_completed"
	EventRentPaid         EventKind = "rent_paid"
	EventRentWaived       EventKind = "rent_waived"
	EventTaxPaid          EventKind = "tax_paid"
	EventCardDrawn        EventKind = "card_drawn"
	EventWheelSpun        EventKind = "wheel_spun"
	EventOutcomeApplied   EventKind = "outcome_applied"
	EventChoicePending    EventKind = "choice_pending"
	EventChoiceResolved   EventKind = "choice_resolved"
	EventMiniGameResult   EventKind = "mini_game_result"
	EventStreak           EventKind = "streak"
	EventImprovementBuilt EventKind = "improvement_built"
	EventTradeProposed    EventKind = "trade_proposed"
	EventTradeCompleted   EventKind = "trade_completed"
	EventTradeDeclined    EventKind = "trade_declined"
	EventPlayerBankrupt   EventKind = "player_bankrupt"
	EventGameOver         EventKind = "game_over"
)

// Event describes one committed state transition.
type Event struct {
	Kind     EventKind      `json:"type"`
	PlayerID int64          `json:"player_id,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

func (s *Session) begin() {
	s.events = s.events[:0]
}

func (s *Session) emit(kind EventKind, playerID int64, data map[string]any) {
	s.events = append(s.events, Event{Kind: kind, PlayerID: playerID, Data: data})
}

func (s *Session) commit() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	s.events = s.events[:0]
	return out
}
