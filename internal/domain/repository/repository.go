package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// ProfileRepository defines profile persistence.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	// Create inserts p and fills timestamps. A row with the same id yields ErrDuplicate.
	Create(ctx context.Context, p *entity.Profile) error
	Update(ctx context.Context, p *entity.Profile) error
	Count(ctx context.Context) (int, error)
}

// ProductFilter narrows product listings. Zero values mean "no constraint".
type ProductFilter struct {
	Status  entity.ProductStatus
	OwnerID string
	Search  string
	Limit   int
	Offset  int
}

// ProductRepository defines product persistence.
type ProductRepository interface {
	// List returns the requested page and the total number of matching rows.
	List(ctx context.Context, f ProductFilter) ([]entity.ProductListItem, int, error)
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetDetail(ctx context.Context, id string) (*entity.ProductDetail, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	// Delete removes the product; its comments go with it.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines comment persistence.
type CommentRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]entity.CommentView, error)
	ListByAuthor(ctx context.Context, userID string) ([]entity.CommentView, error)
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	// Create inserts c and returns it joined with the author's username.
	Create(ctx context.Context, c *entity.Comment) (*entity.CommentView, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// AccountRepository defines persistence for the secondary credential service.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetByID(ctx context.Context, id string) (*entity.Account, error)
}
