package entity

import "time"

const RoleStandard = "standard"

// Profile is the application-level record for an identity.
// ID equals the identity id and never changes.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       *string   `json:"bio"`
	Website   *string   `json:"website"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerSummary is the denormalized owner shown next to a product.
type OwnerSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
