package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-community-market/config"
	"github.com/oksasatya/go-community-market/pkg/helpers"
)

// Fixed ids keep the seed idempotent and let a local directory user with the
// same id pick up the demo profile.
const (
	demoProfileID = "00000000-0000-4000-8000-000000000001"
	demoEmail     = "demo@community-market.local"
	demoUsername  = "demoSeller"
	demoPassword  = "password123"
)

var demoProducts = []struct {
	ID, Title, Description string
}{
	{"00000000-0000-4000-8000-000000000101", "Handmade walnut bowl", "Turned from a single piece of walnut and finished with food-safe oil."},
	{"00000000-0000-4000-8000-000000000102", "Vintage film camera", "35mm rangefinder in working order, light seals replaced last spring."},
	{"00000000-0000-4000-8000-000000000103", "Sourdough starter", "Five-year-old rye starter, shipped dried with feeding instructions."},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`
		INSERT INTO profiles (id, username, email, role)
		VALUES ($1, $2, $3, 'standard')
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
	`, demoProfileID, demoUsername, demoEmail); err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}
	fmt.Printf("seeded profile: id=%s username=%s\n", demoProfileID, demoUsername)

	for _, p := range demoProducts {
		if _, err := db.Exec(`
			INSERT INTO products (id, title, description, user_id, status)
			VALUES ($1, $2, $3, $4, 'active')
			ON CONFLICT (id) DO NOTHING
		`, p.ID, p.Title, p.Description, demoProfileID); err != nil {
			log.Fatalf("failed to seed product %q: %v", p.Title, err)
		}
	}
	fmt.Printf("seeded %d products\n", len(demoProducts))

	if _, err := db.Exec(`
		INSERT INTO comments (id, content, user_id, product_id)
		VALUES ('00000000-0000-4000-8000-000000000201', 'Is the bowl still available?', $1, $2)
		ON CONFLICT (id) DO NOTHING
	`, demoProfileID, demoProducts[0].ID); err != nil {
		log.Fatalf("failed to seed comment: %v", err)
	}

	// Credential service account
	hash, err := helpers.HashPassword(demoPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	var accountID string
	err = db.QueryRow(`
		INSERT INTO users (email, password)
		VALUES ($1, $2)
		ON CONFLICT ((lower(email))) DO UPDATE SET password = EXCLUDED.password
		RETURNING id
	`, demoEmail, hash).Scan(&accountID)
	if err != nil {
		log.Fatalf("failed to seed account: %v", err)
	}
	fmt.Printf("seeded account: id=%s email=%s password=%s\n", accountID, demoEmail, demoPassword)
}
