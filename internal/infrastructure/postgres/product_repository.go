package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
)

type ProductRepository struct {
	pool     *pgxpool.Pool
	comments *CommentRepository
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool, comments: NewCommentRepository(pool)}
}

const productColumns = `p.id::text, p.title, p.description, p.image_url, p.user_id::text, p.status, p.created_at, p.updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildProductWhere renders the filter as a WHERE clause with positional args.
func buildProductWhere(f repo.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		conds = append(conds, fmt.Sprintf("p.user_id::text = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", n, n))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanProduct(row pgx.Row, p *entity.Product, extra ...any) error {
	var status string
	dest := append([]any{&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.UserID, &status, &p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	p.Status = entity.ProductStatus(status)
	return nil
}

func ownerSummary(username, email *string) *entity.OwnerSummary {
	if username == nil {
		return nil
	}
	o := &entity.OwnerSummary{Username: *username}
	if email != nil {
		o.Email = *email
	}
	return o
}

func (r *ProductRepository) List(ctx context.Context, f repo.ProductFilter) ([]entity.ProductListItem, int, error) {
	where, args := buildProductWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products p `+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	q := `
		SELECT ` + productColumns + `, pr.username, pr.email,
			(SELECT count(*) FROM comments c WHERE c.product_id = p.id)
		FROM products p
		LEFT JOIN profiles pr ON pr.id = p.user_id
		` + where + `
		ORDER BY p.created_at DESC, p.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := make([]entity.ProductListItem, 0)
	for rows.Next() {
		var (
			it              entity.ProductListItem
			username, email *string
		)
		if err := scanProduct(rows, &it.Product, &username, &email, &it.CommentCount); err != nil {
			return nil, 0, err
		}
		it.Profile = ownerSummary(username, email)
		out = append(out, it)
	}
	return out, total, rows.Err()
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p := &entity.Product{}
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
	if err := scanProduct(row, p); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *ProductRepository) GetDetail(ctx context.Context, id string) (*entity.ProductDetail, error) {
	d := &entity.ProductDetail{}
	var username, email *string
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`, pr.username, pr.email
		FROM products p
		LEFT JOIN profiles pr ON pr.id = p.user_id
		WHERE p.id = $1
	`, id)
	if err := scanProduct(row, &d.Product, &username, &email); err != nil {
		return nil, mapErr(err)
	}
	d.Profile = ownerSummary(username, email)

	comments, err := r.comments.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Comments = comments
	return d, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (title, description, image_url, user_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at, updated_at
	`, p.Title, p.Description, p.ImageURL, p.UserID, string(p.Status))
	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

// Update writes the mutable columns. The owner column is never updated.
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET title = $1, description = $2, image_url = $3, status = $4, updated_at = now()
		WHERE id = $5
		RETURNING user_id::text, created_at, updated_at
	`, p.Title, p.Description, p.ImageURL, string(p.Status), p.ID)
	return mapErr(row.Scan(&p.UserID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n)
	return n, mapErr(err)
}

var _ repo.ProductRepository = (*ProductRepository)(nil)
