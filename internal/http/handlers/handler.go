package handlers

import (
	"lucky_streets/internal/repository"
	"lucky_streets/internal/service"
	"lucky_streets/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HandlerConfig holds configuration for handler
type HandlerConfig struct {
	DevMode       bool
	DevGrant      int64
	AllowedOrigin string
	ActionRate    float64
	ActionBurst   int
}

type Handler struct {
	DB             *pgxpool.Pool
	Hub            *ws.Hub
	AccountRepo    *repository.AccountRepository
	HistoryRepo    *repository.SessionHistoryRepository
	BalanceService *service.BalanceService
	AuditService   *service.AuditService
	cfg            HandlerConfig
}

func NewHandler(db *pgxpool.Pool, hub *ws.Hub, cfg HandlerConfig) *Handler {
	return &Handler{
		DB:             db,
		Hub:            hub,
		AccountRepo:    repository.NewAccountRepository(db),
		HistoryRepo:    repository.NewSessionHistoryRepository(db),
		BalanceService: service.NewBalanceService(db),
		AuditService:   service.NewAuditService(db),
		cfg:            cfg,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func getUserName(c interface{ Get(string) (any, bool) }) string {
	v, _ := c.Get("user_name")
	name, _ := v.(string)
	return name
}
