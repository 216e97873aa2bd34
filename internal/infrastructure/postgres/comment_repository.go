package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func (r *CommentRepository) ListByProduct(ctx context.Context, productID string) ([]entity.CommentView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.content, c.user_id::text, c.product_id::text, c.created_at, c.updated_at,
			COALESCE(pr.username, '')
		FROM comments c
		LEFT JOIN profiles pr ON pr.id = c.user_id
		WHERE c.product_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`, productID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]entity.CommentView, 0)
	for rows.Next() {
		var v entity.CommentView
		if err := rows.Scan(&v.ID, &v.Content, &v.UserID, &v.ProductID, &v.CreatedAt, &v.UpdatedAt, &v.AuthorUsername); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *CommentRepository) ListByAuthor(ctx context.Context, userID string) ([]entity.CommentView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.content, c.user_id::text, c.product_id::text, c.created_at, c.updated_at,
			COALESCE(pr.username, ''), COALESCE(p.title, '')
		FROM comments c
		LEFT JOIN profiles pr ON pr.id = c.user_id
		LEFT JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]entity.CommentView, 0)
	for rows.Next() {
		var v entity.CommentView
		if err := rows.Scan(&v.ID, &v.Content, &v.UserID, &v.ProductID, &v.CreatedAt, &v.UpdatedAt, &v.AuthorUsername, &v.ProductTitle); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	c := &entity.Comment{}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, content, user_id::text, product_id::text, created_at, updated_at
		FROM comments
		WHERE id = $1
	`, id)
	if err := row.Scan(&c.ID, &c.Content, &c.UserID, &c.ProductID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// Create inserts c and reads back the author's username in the same round trip.
func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) (*entity.CommentView, error) {
	v := &entity.CommentView{}
	row := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO comments (content, user_id, product_id)
			VALUES ($1, $2, $3)
			RETURNING id, content, user_id, product_id, created_at, updated_at
		)
		SELECT i.id::text, i.content, i.user_id::text, i.product_id::text, i.created_at, i.updated_at,
			COALESCE(pr.username, '')
		FROM inserted i
		LEFT JOIN profiles pr ON pr.id = i.user_id
	`, c.Content, c.UserID, c.ProductID)
	if err := row.Scan(&v.ID, &v.Content, &v.UserID, &v.ProductID, &v.CreatedAt, &v.UpdatedAt, &v.AuthorUsername); err != nil {
		return nil, mapErr(err)
	}
	*c = v.Comment
	return v, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM comments`).Scan(&n)
	return n, mapErr(err)
}

var _ repo.CommentRepository = (*CommentRepository)(nil)
