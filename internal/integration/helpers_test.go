package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"lucky_streets/internal/domain"
	"lucky_streets/internal/repository"
	"lucky_streets/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func connect(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	applyMigrations(t, db)
	return db
}

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(migDir, name))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", name, err)
		}
	}
}

// fundedAccount creates a fresh account holding balance.
func fundedAccount(t *testing.T, db *pgxpool.Pool, prefix string, balance int64) *domain.Account {
	t.Helper()
	ctx := context.Background()
	name := fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	a, err := repository.NewAccountRepository(db).GetOrCreate(ctx, name, prefix)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if balance > 0 {
		a.Balance, err = service.NewBalanceService(db).Credit(ctx, a.ID, balance, domain.TxDevGrant, nil)
		if err != nil {
			t.Fatalf("fund account: %v", err)
		}
	}
	return a
}
