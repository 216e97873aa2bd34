package entity

import "time"

// Comment is a note left by a profile on a product.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentView annotates a comment with its author and, for dashboard
// listings, the parent product title.
type CommentView struct {
	Comment
	AuthorUsername string `json:"username"`
	ProductTitle   string `json:"product_title,omitempty"`
}
