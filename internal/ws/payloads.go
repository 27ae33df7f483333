package ws

import (
	"encoding/json"

	"lucky_streets/internal/game"
)

// client → server
type Inbound struct {
	Type    string           `json:"type"`
	Code    string           `json:"code,omitempty"`
	BuyIn   int64            `json:"buy_in,omitempty"`
	Variant game.VariantKind `json:"variant,omitempty"`
	Private bool             `json:"private,omitempty"`
	Space   int              `json:"space,omitempty"`
	Amount  int64            `json:"amount,omitempty"`
	Index   *int             `json:"index,omitempty"`
	Target  int64            `json:"target,omitempty"`
	Won     bool             `json:"won,omitempty"`
	From    int64            `json:"from,omitempty"`
	Offer   *game.TradeOffer `json:"offer,omitempty"`
}

// server → client
type EventMessage struct {
	Type  game.EventKind  `json:"type"`
	Event game.Event      `json:"event"`
	State json.RawMessage `json:"state"`
}

type StateMessage struct {
	Type  string        `json:"type"`
	State game.Snapshot `json:"state"`
}

type MatchmakingMessage struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	Tier     int64  `json:"tier,omitempty"`
	Position int    `json:"position,omitempty"`
	TicketID string `json:"ticket_id,omitempty"`
	Code     string `json:"code,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorMessage(err error) []byte {
	raw, _ := json.Marshal(ErrorMessage{
		Type:    MsgError,
		Code:    game.ErrorCode(err),
		Message: err.Error(),
	})
	return raw
}

func stateMessage(snap game.Snapshot) []byte {
	raw, _ := json.Marshal(StateMessage{Type: MsgState, State: snap})
	return raw
}

func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
