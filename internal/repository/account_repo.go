package repository

import (
	"context"
	"errors"

	"lucky_streets/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAccountNotFound = errors.New("account not found")

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRow(ctx,
		`SELECT id, username, COALESCE(display_name, ''), balance, created_at
		 FROM accounts
		 WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Username, &a.DisplayName, &a.Balance, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRow(ctx,
		`SELECT id, username, COALESCE(display_name, ''), balance, created_at
		 FROM accounts
		 WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username, &a.DisplayName, &a.Balance, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts an account with a zero balance.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO accounts (username, display_name)
		 VALUES ($1, $2)
		 RETURNING id, balance, created_at`,
		a.Username, a.DisplayName,
	).Scan(&a.ID, &a.Balance, &a.CreatedAt)
}

// GetOrCreate returns the account for a username, creating it if missing.
func (r *AccountRepository) GetOrCreate(ctx context.Context, username, displayName string) (*domain.Account, error) {
	a, err := r.GetByUsername(ctx, username)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	a = &domain.Account{Username: username, DisplayName: displayName}
	if err := r.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
