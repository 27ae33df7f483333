package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"lucky_streets/internal/db"
	"lucky_streets/internal/domain"
	"lucky_streets/internal/logger"
	"lucky_streets/internal/repository"
	"lucky_streets/internal/service"
)

func main() {
	username := flag.String("username", "testuser", "account username")
	grant := flag.Int64("grant", 10000, "top up the balance to at least this amount")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	repo := repository.NewAccountRepository(pool)
	account, err := repo.GetOrCreate(ctx, *username, *username)
	if err != nil {
		logger.Fatal("get or create account", "error", err)
	}

	if missing := *grant - account.Balance; missing > 0 {
		balances := service.NewBalanceService(pool)
		account.Balance, err = balances.Credit(ctx, account.ID, missing, domain.TxDevGrant, map[string]interface{}{"source": "create_test_user"})
		if err != nil {
			logger.Fatal("grant balance", "error", err)
		}
	}
	logger.Info("account ready", "id", account.ID, "username", account.Username, "balance", account.Balance)

	service.InitJWT(secret)
	token, err := service.GenerateJWT(account.ID, account.DisplayName)
	if err != nil {
		logger.Fatal("generate token", "error", err)
	}
	fmt.Println(token)
}
