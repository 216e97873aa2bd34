package entity

import "time"

// Account belongs to the secondary credential service. It shares nothing
// with Identity or Profile.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
}
