package entity

import "time"

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductDraft    ProductStatus = "draft"
)

// Valid reports whether s is one of the known statuses.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductInactive, ProductDraft:
		return true
	}
	return false
}

// Product is a listing owned by a profile. UserID is immutable.
type Product struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ImageURL    *string       `json:"image_url"`
	UserID      string        `json:"user_id"`
	Status      ProductStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ProductListItem is a product row joined with its owner and comment count.
type ProductListItem struct {
	Product
	Profile      *OwnerSummary `json:"profiles"`
	CommentCount int           `json:"comment_count"`
}

// ProductDetail is a product with owner and every comment, newest first.
type ProductDetail struct {
	Product
	Profile  *OwnerSummary `json:"profiles"`
	Comments []CommentView `json:"comments"`
}
