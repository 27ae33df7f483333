package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the monthly top winners
func (h *Handler) GetLeaderboard(c *gin.Context) {
	top, err := h.HistoryRepo.GetMonthlyTop(c.Request.Context(), queryLimit(c, 100))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": top,
		"period":      "monthly",
	})
}
