package ws

import (
	"context"
	"fmt"

	"lucky_streets/internal/game"
	"lucky_streets/internal/metrics"
)

// Handle routes one inbound client message. The returned bytes, if any, go
// back to the sender only; session events reach everyone through the room.
func (h *Hub) Handle(ctx context.Context, id Identity, in Inbound) ([]byte, error) {
	reply, err := h.handle(ctx, id, in)
	result := "ok"
	if err != nil {
		result = game.ErrorCode(err)
	}
	metrics.Actions.WithLabelValues(in.Type, result).Inc()
	return reply, err
}

func (h *Hub) handle(ctx context.Context, id Identity, in Inbound) ([]byte, error) {
	switch in.Type {
	case MsgPing:
		return mustJSON(map[string]string{"type": MsgPong}), nil

	case MsgCreateSession:
		_, err := h.CreateSession(ctx, id, CreateOptions{BuyIn: in.BuyIn, Private: in.Private, Variant: in.Variant})
		return nil, err

	case MsgJoinSession:
		_, err := h.JoinSession(ctx, in.Code, id)
		return nil, err

	case MsgStartSession:
		r := h.seatedRoom(id.ID)
		if r == nil {
			return nil, game.ErrRoomNotFound
		}
		_, err := h.StartSession(ctx, r.Code, id.ID)
		return nil, err

	case MsgLeaveSession:
		return nil, h.Leave(ctx, id.ID)

	case MsgJoinMatchmaking:
		t, err := h.JoinMatchmaking(ctx, id, in.BuyIn)
		if err != nil {
			return nil, err
		}
		msg := MatchmakingMessage{Type: MsgMatchmaking, Status: "queued", Tier: t.Tier, TicketID: t.ID}
		if _, pos, ok := h.QueuePosition(id.ID); ok {
			msg.Position = pos
		} else {
			// the ticket already formed a match
			msg.Status = "matched"
		}
		return mustJSON(msg), nil

	case MsgLeaveMatchmaking:
		if !h.LeaveMatchmaking(id.ID) {
			return nil, fmt.Errorf("%w: not queued", game.ErrInvalidAction)
		}
		return mustJSON(MatchmakingMessage{Type: MsgMatchmaking, Status: "left"}), nil
	}

	action, err := sessionAction(id.ID, in)
	if err != nil {
		return nil, err
	}
	return nil, h.Act(ctx, id.ID, action)
}

// sessionAction maps an in-game message onto the session operation it names.
func sessionAction(playerID int64, in Inbound) (func(*game.Session) ([]game.Event, error), error) {
	switch in.Type {
	case MsgRollDice:
		return func(s *game.Session) ([]game.Event, error) { return s.RollDice(playerID) }, nil
	case MsgBuyProperty:
		return func(s *game.Session) ([]game.Event, error) { return s.BuyProperty(playerID, in.Space) }, nil
	case MsgAuctionProperty:
		return func(s *game.Session) ([]game.Event, error) { return s.AuctionProperty(playerID, in.Space) }, nil
	case MsgPlaceBid:
		return func(s *game.Session) ([]game.Event, error) { return s.PlaceBid(playerID, in.Amount) }, nil
	case MsgPassAuction:
		return func(s *game.Session) ([]game.Event, error) { return s.PassAuction(playerID) }, nil
	case MsgBuildImprovement:
		return func(s *game.Session) ([]game.Event, error) { return s.BuildImprovement(playerID, in.Space) }, nil
	case MsgEndTurn:
		return func(s *game.Session) ([]game.Event, error) { return s.EndTurn(playerID) }, nil
	case MsgDraftProperty:
		return func(s *game.Session) ([]game.Event, error) { return s.DraftProperty(playerID, in.Space) }, nil
	case MsgResolveChoice:
		if in.Index == nil {
			return nil, fmt.Errorf("%w: index is required", game.ErrInvalidAction)
		}
		index := *in.Index
		return func(s *game.Session) ([]game.Event, error) { return s.ResolveWheelChoice(playerID, index) }, nil
	case MsgTeleportTarget:
		return func(s *game.Session) ([]game.Event, error) { return s.ChooseTeleportTarget(playerID, in.Space) }, nil
	case MsgFreezeTarget:
		return func(s *game.Session) ([]game.Event, error) { return s.ChooseFreezeTarget(playerID, in.Target) }, nil
	case MsgMiniGameResult:
		return func(s *game.Session) ([]game.Event, error) { return s.ReportMiniGameResult(playerID, in.Won) }, nil
	case MsgProposeTrade:
		if in.Offer == nil {
			return nil, fmt.Errorf("%w: offer is required", game.ErrInvalidAction)
		}
		offer := *in.Offer
		offer.From = playerID
		return func(s *game.Session) ([]game.Event, error) { return s.ProposeTrade(offer) }, nil
	case MsgAcceptTrade:
		if in.Offer == nil {
			return nil, fmt.Errorf("%w: offer is required", game.ErrInvalidAction)
		}
		seen := *in.Offer
		return func(s *game.Session) ([]game.Event, error) { return s.AcceptTrade(playerID, in.From, seen) }, nil
	case MsgDeclineTrade:
		return func(s *game.Session) ([]game.Event, error) { return s.DeclineTrade(playerID, in.From) }, nil
	}
	return nil, fmt.Errorf("%w: unknown message type %q", game.ErrInvalidAction, in.Type)
}
