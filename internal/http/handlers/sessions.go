package handlers

import (
	"errors"
	"net/http"

	"lucky_streets/internal/game"
	"lucky_streets/internal/ws"

	"github.com/gin-gonic/gin"
)

type CreateSessionRequest struct {
	BuyIn   int64            `json:"buy_in" binding:"required,gt=0"`
	Variant game.VariantKind `json:"variant"`
	Private bool             `json:"private"`
}

type MatchmakingRequest struct {
	Tier int64 `json:"tier" binding:"required,gt=0"`
}

// ListSessions returns public lobbies with a free seat.
func (h *Handler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.Hub.OpenSessions()})
}

func (h *Handler) GetSession(c *gin.Context) {
	snap, ok := h.Hub.GetSession(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) CreateSession(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	snap, err := h.Hub.CreateSession(c.Request.Context(),
		ws.Identity{ID: userID, Name: getUserName(c)},
		ws.CreateOptions{BuyIn: req.BuyIn, Variant: req.Variant, Private: req.Private})
	if err != nil {
		gameError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h *Handler) JoinSession(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	snap, err := h.Hub.JoinSession(c.Request.Context(), c.Param("code"), ws.Identity{ID: userID, Name: getUserName(c)})
	if err != nil {
		gameError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// MatchmakingStatus reports queue sizes per tier and the caller's place.
func (h *Handler) MatchmakingStatus(c *gin.Context) {
	resp := gin.H{"queues": h.Hub.QueueStatus()}
	if userID, ok := getUserID(c); ok {
		if tier, pos, queued := h.Hub.QueuePosition(userID); queued {
			resp["tier"] = tier
			resp["position"] = pos
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) JoinMatchmaking(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req MatchmakingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ticket, err := h.Hub.JoinMatchmaking(c.Request.Context(), ws.Identity{ID: userID, Name: getUserName(c)}, req.Tier)
	if err != nil {
		gameError(c, err)
		return
	}
	resp := gin.H{"ticket_id": ticket.ID, "tier": ticket.Tier, "status": "matched"}
	if _, pos, queued := h.Hub.QueuePosition(userID); queued {
		resp["status"] = "queued"
		resp["position"] = pos
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) LeaveMatchmaking(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if !h.Hub.LeaveMatchmaking(userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not queued"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

// GameConfig lists buy-in tiers and the timers of each variant.
func (h *Handler) GameConfig(c *gin.Context) {
	variants := gin.H{}
	for _, kind := range []game.VariantKind{game.VariantLucky, game.VariantClassic} {
		rules, err := h.Hub.Rules(kind)
		if err != nil {
			continue
		}
		variants[string(kind)] = gin.H{
			"board_size":       len(rules.Board),
			"min_players":      rules.MinPlayers,
			"max_players":      rules.MaxPlayers,
			"turn_timeout":     rules.TurnTimeout.Seconds(),
			"decision_timeout": rules.DecisionTimeout.Seconds(),
			"session_length":   rules.SessionLength.Seconds(),
			"max_rounds":       rules.MaxRounds,
			"draft":            rules.Draft,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"tiers":    h.Hub.Tiers(),
		"variants": variants,
	})
}

// gameError maps engine errors onto HTTP statuses.
func gameError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrRoomFull), errors.Is(err, game.ErrAlreadyStarted):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, game.ErrInvalidAction), errors.Is(err, game.ErrNotYourTurn):
		status = http.StatusBadRequest
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg, "code": game.ErrorCode(err)})
}
