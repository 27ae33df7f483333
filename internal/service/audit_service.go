package service

import (
	"context"

	"lucky_streets/internal/domain"
	"lucky_streets/internal/logger"
	"lucky_streets/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditService handles audit logging
type AuditService struct {
	repo *repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(db *pgxpool.Pool) *AuditService {
	return &AuditService{
		repo: repository.NewAuditRepository(db),
	}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, accountID int64, action, category string, details map[string]interface{}) {
	log := &domain.AuditLog{
		AccountID: accountID,
		Action:    action,
		Category:  category,
		Details:   details,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "account_id", accountID)
	}
}

// LogWithRequest creates an audit log with request info (IP, User-Agent)
func (s *AuditService) LogWithRequest(ctx context.Context, accountID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	log := &domain.AuditLog{
		AccountID: accountID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "account_id", accountID)
	}
}

// LogLogin logs a websocket or API login
func (s *AuditService) LogLogin(ctx context.Context, accountID int64, ip, userAgent string) {
	s.LogWithRequest(ctx, accountID, domain.AuditActionLogin, domain.AuditCategoryAuth, ip, userAgent, nil)
}

// LogBalanceChange logs a balance change
func (s *AuditService) LogBalanceChange(ctx context.Context, accountID int64, change int64, reason string, details map[string]interface{}) {
	action := domain.AuditActionBalanceCredit
	if change < 0 {
		action = domain.AuditActionBalanceDebit
	}

	if details == nil {
		details = make(map[string]interface{})
	}
	details["change"] = change
	details["reason"] = reason

	s.Log(ctx, accountID, action, domain.AuditCategoryBalance, details)
}

// GetAccountAuditLogs returns audit logs for an account
func (s *AuditService) GetAccountAuditLogs(ctx context.Context, accountID int64, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByAccountID(ctx, accountID, limit)
}
