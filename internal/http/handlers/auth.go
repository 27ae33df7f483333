package handlers

import (
	"net/http"
	"strings"

	"lucky_streets/internal/domain"
	"lucky_streets/internal/logger"
	"lucky_streets/internal/service"

	"github.com/gin-gonic/gin"
)

type DevLoginRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// DevLogin issues a token for a local account. It only exists in dev mode;
// production tokens come from the platform's own identity service.
func (h *Handler) DevLogin(c *gin.Context) {
	if !h.cfg.DevMode {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req DevLoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Username) > 32 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 1-32 characters"})
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	ctx := c.Request.Context()
	account, err := h.AccountRepo.GetOrCreate(ctx, req.Username, req.DisplayName)
	if err != nil {
		logger.Error("dev login failed", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	// fresh dev accounts get play money
	if account.Balance == 0 && h.cfg.DevGrant > 0 {
		balance, err := h.BalanceService.Credit(ctx, account.ID, h.cfg.DevGrant, domain.TxDevGrant, nil)
		if err != nil {
			logger.Error("dev grant failed", "account_id", account.ID, "error", err)
		} else {
			account.Balance = balance
			h.AuditService.LogBalanceChange(ctx, account.ID, h.cfg.DevGrant, domain.TxDevGrant, nil)
		}
	}

	token, err := service.GenerateJWT(account.ID, account.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	h.AuditService.LogLogin(ctx, account.ID, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"account": account,
	})
}
