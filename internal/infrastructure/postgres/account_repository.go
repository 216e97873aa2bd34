package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	"github.com/oksasatya/go-community-market/internal/domain/repository"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password)
		VALUES ($1, $2)
		RETURNING id::text, created_at
	`, a.Email, a.Password)
	return mapErr(row.Scan(&a.ID, &a.CreatedAt))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	a := &entity.Account{}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, email, password, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`, email)
	if err := row.Scan(&a.ID, &a.Email, &a.Password, &a.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	a := &entity.Account{}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, email, password, created_at
		FROM users
		WHERE id = $1
	`, id)
	if err := row.Scan(&a.ID, &a.Email, &a.Password, &a.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
