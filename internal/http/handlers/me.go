package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	account, err := h.AccountRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	resp := gin.H{
		"id":           account.ID,
		"username":     account.Username,
		"display_name": account.DisplayName,
		"balance":      account.Balance,
		"created_at":   account.CreatedAt,
	}
	if tier, pos, queued := h.Hub.QueuePosition(userID); queued {
		resp["matchmaking"] = gin.H{"tier": tier, "position": pos}
	}
	if code, seated := h.Hub.SeatOf(userID); seated {
		resp["session"] = code
	}
	c.JSON(http.StatusOK, resp)
}

// MySessions returns the caller's finished sessions, newest first.
func (h *Handler) MySessions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	history, err := h.HistoryRepo.GetByAccount(c.Request.Context(), userID, queryLimit(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": history})
}

func (h *Handler) MyTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	txs, err := h.BalanceService.GetTransactionHistory(c.Request.Context(), userID, queryLimit(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// MyAudit lists the caller's audit trail: logins, buy-ins, refunds, results.
func (h *Handler) MyAudit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	logs, err := h.AuditService.GetAccountAuditLogs(c.Request.Context(), userID, queryLimit(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": logs})
}

// queryLimit reads ?limit=, clamped to [1, 100].
func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, 100)
}
