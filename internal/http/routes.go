package http

import (
	"lucky_streets/internal/config"
	"lucky_streets/internal/http/handlers"
	"lucky_streets/internal/http/middleware"
	"lucky_streets/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps are the long-lived services the routes hand requests to.
type Deps struct {
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Hub     *ws.Hub
	Config  *config.Config
	Version string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	middleware.UseRedis(d.Redis)

	h := handlers.NewHandler(d.DB, d.Hub, handlers.HandlerConfig{
		DevMode:       cfg.DevMode,
		DevGrant:      cfg.DevGrant,
		AllowedOrigin: cfg.AllowedOrigin,
		ActionRate:    cfg.Game.WSActionRate,
		ActionBurst:   cfg.Game.WSActionBurst,
	})
	healthHandler := handlers.NewHealthHandler(d.DB, d.Redis, d.Hub.RoomCount, d.Version)

	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket: one connection per player carries every session message
	wsLimiter := middleware.NewIPRateLimiter(cfg.APIRateLimit, 10)
	r.GET("/ws", wsLimiter.Middleware(), h.WS())

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	// Auth
	api.POST("/auth/dev", h.DevLogin)

	// Account
	api.GET("/me", middleware.JWT(), h.Me)
	api.GET("/me/sessions", middleware.JWT(), h.MySessions)
	api.GET("/me/transactions", middleware.JWT(), h.MyTransactions)
	api.GET("/me/audit", middleware.JWT(), h.MyAudit)

	// Sessions
	sessionRL := middleware.UserRateLimit("sessions", cfg.SessionRateLimit, cfg.APIRateWindow)
	api.GET("/game/config", h.GameConfig)
	api.GET("/sessions", h.ListSessions)
	api.GET("/sessions/:code", h.GetSession)
	api.POST("/sessions", middleware.JWT(), sessionRL, h.CreateSession)
	api.POST("/sessions/:code/join", middleware.JWT(), sessionRL, h.JoinSession)

	// Matchmaking
	api.GET("/matchmaking", middleware.OptionalJWT(), h.MatchmakingStatus)
	api.POST("/matchmaking", middleware.JWT(), sessionRL, h.JoinMatchmaking)
	api.DELETE("/matchmaking", middleware.JWT(), h.LeaveMatchmaking)

	api.GET("/leaderboard", h.GetLeaderboard)
}
