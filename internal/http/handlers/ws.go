package handlers

import (
	"net/http"

	"lucky_streets/internal/logger"
	"lucky_streets/internal/service"
	"lucky_streets/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

func (h *Handler) WS() gin.HandlerFunc {
	allowedOrigin := h.cfg.AllowedOrigin
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}
	limit := rate.Limit(h.cfg.ActionRate)
	if h.cfg.ActionRate <= 0 {
		limit = rate.Inf
	}
	burst := max(h.cfg.ActionBurst, 1)

	return func(c *gin.Context) {
		// JWT from query
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		claims, err := service.ParseClaims(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}
		h.AuditService.LogLogin(c.Request.Context(), claims.UserID, c.ClientIP(), c.Request.UserAgent())

		client := ws.NewClient(ws.Identity{ID: claims.UserID, Name: claims.Name}, conn, h.Hub, limit, burst)
		go client.Run()
	}
}
