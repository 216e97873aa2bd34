package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	p := &entity.Profile{}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, username, email, bio, website, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id)
	if err := row.Scan(&p.ID, &p.Username, &p.Email, &p.Bio, &p.Website, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, username, email, bio, website, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, p.ID, p.Username, p.Email, p.Bio, p.Website, p.Role)
	return mapErr(row.Scan(&p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE profiles
		SET username = $1, bio = $2, website = $3, updated_at = now()
		WHERE id = $4
		RETURNING created_at, updated_at
	`, p.Username, p.Bio, p.Website, p.ID)
	return mapErr(row.Scan(&p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfileRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM profiles`).Scan(&n)
	return n, mapErr(err)
}

var _ repo.ProfileRepository = (*ProfileRepository)(nil)
