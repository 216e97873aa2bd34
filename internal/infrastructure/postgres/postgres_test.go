package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(pgx.ErrNoRows), repo.ErrNotFound)
	assert.ErrorIs(t, mapErr(fmt.Errorf("scan: %w", pgx.ErrNoRows)), repo.ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505"}), repo.ErrDuplicate)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "22P02"}), repo.ErrNotFound)

	other := errors.New("boom")
	assert.Same(t, other, mapErr(other))
}

func TestBuildProductWhere(t *testing.T) {
	where, args := buildProductWhere(repo.ProductFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = buildProductWhere(repo.ProductFilter{Status: entity.ProductActive, OwnerID: "u1", Search: "50%_off"})
	assert.Equal(t, "WHERE p.status = $1 AND p.user_id::text = $2 AND (p.title ILIKE $3 OR p.description ILIKE $3)", where)
	assert.Equal(t, []any{"active", "u1", `%50\%\_off%`}, args)
}
