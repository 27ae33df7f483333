package config

import (
	"os"
	"strconv"
	"time"

	"lucky_streets/internal/game"
	"lucky_streets/internal/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// HTTP rate limit
	APIRateLimit     int
	APIRateWindow    time.Duration
	SessionRateLimit int

	// DEV_MODE enables /auth/dev, which hands out tokens and play money
	DevMode  bool
	DevGrant int64

	Game GameConfig
}

// GameConfig tunes matchmaking, rooms and the rules of each variant.
type GameConfig struct {
	BuyInTiers       []int64       `env:"BUY_IN_TIERS"       envSeparator:"," envDefault:"100,500,1000,2500"`
	MatchmakingGrace time.Duration `env:"MATCHMAKING_GRACE"  envDefault:"10s"`
	ReconnectGrace   time.Duration `env:"RECONNECT_GRACE"    envDefault:"30s"`
	RoomIdleTimeout  time.Duration `env:"ROOM_IDLE_TIMEOUT"  envDefault:"30m"`
	CleanupInterval  time.Duration `env:"ROOM_CLEANUP_EVERY" envDefault:"1m"`
	WSActionRate     float64       `env:"WS_ACTION_RATE"     envDefault:"10"`
	WSActionBurst    int           `env:"WS_ACTION_BURST"    envDefault:"20"`

	Lucky   RuleOverrides `envPrefix:"LUCKY_"`
	Classic RuleOverrides `envPrefix:"CLASSIC_"`
}

// RuleOverrides replaces variant defaults. Zero keeps the default.
type RuleOverrides struct {
	TurnTimeout     time.Duration `env:"TURN_TIMEOUT"`
	DecisionTimeout time.Duration `env:"DECISION_TIMEOUT"`
	TimeoutPenalty  int64         `env:"TIMEOUT_PENALTY"`
	SessionLength   time.Duration `env:"SESSION_LENGTH"`
	MaxRounds       int           `env:"MAX_ROUNDS"`
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	rateLimit := 120
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateLimit = n
		}
	}

	rateWindow := 60
	if v := os.Getenv("API_RATE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateWindow = n
		}
	}

	sessionLimit := 20
	if v := os.Getenv("SESSION_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			sessionLimit = n
		}
	}

	var devGrant int64 = 10000
	if v := os.Getenv("DEV_GRANT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			devGrant = n
		}
	}

	game, err := LoadGame()
	if err != nil {
		logger.Fatal("invalid game configuration", "error", err)
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		APIRateLimit:  rateLimit,
		APIRateWindow: time.Duration(rateWindow) * time.Second,
		Game:          game,

		SessionRateLimit: sessionLimit,
		DevMode:          os.Getenv("DEV_MODE") == "true",
		DevGrant:         devGrant,
	}
}

// LoadGame parses the game tuning from the environment.
func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	if err := env.Parse(&cfg); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

// HasTier reports whether amount is one of the configured buy-ins.
func (g GameConfig) HasTier(amount int64) bool {
	for _, t := range g.BuyInTiers {
		if t == amount {
			return true
		}
	}
	return false
}

// Rules returns the configured overrides for a variant.
func (g GameConfig) Rules(kind game.VariantKind) game.Overrides {
	o := g.Classic
	if kind == game.VariantLucky {
		o = g.Lucky
	}
	return game.Overrides{
		TurnTimeout:     o.TurnTimeout,
		DecisionTimeout: o.DecisionTimeout,
		TimeoutPenalty:  o.TimeoutPenalty,
		SessionLength:   o.SessionLength,
		MaxRounds:       o.MaxRounds,
	}
}
