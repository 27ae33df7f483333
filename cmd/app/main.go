package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lucky_streets/internal/config"
	"lucky_streets/internal/db"
	httpServer "lucky_streets/internal/http"
	"lucky_streets/internal/logger"
	"lucky_streets/internal/matchmaking"
	"lucky_streets/internal/service"
	"lucky_streets/internal/ws"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	rdb := connectRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	balance := service.NewBalanceService(dbPool)
	settlement := service.NewSettlementService(dbPool, balance)
	opts := []ws.HubOption{ws.WithAuditor(service.NewAuditService(dbPool))}
	if rdb != nil {
		opts = append(opts, ws.WithMirror(matchmaking.NewRedisMirror(rdb)))
	}
	hub := ws.NewHub(ws.NewHubConfig(cfg.Game), balance, settlement, opts...)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	hub.StartCleanup(ctx)

	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for the frontend on a different domain
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		DB:      dbPool,
		Redis:   rdb,
		Hub:     hub,
		Config:  cfg,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	// pending settlements must reach the ledger before the pool closes
	if err := hub.Shutdown(shutdownCtx); err != nil {
		logger.Error("hub shutdown incomplete", "error", err)
	}

	logger.Info("server exited")
}

// connectRedis returns nil when Redis is not configured or unreachable;
// rate limits and the queue mirror then fail open.
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, continuing without it", "addr", cfg.RedisAddr, "error", err)
		client.Close()
		return nil
	}
	return client
}
