package application

import (
	"context"
	"io"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	"github.com/oksasatya/go-community-market/internal/session"
)

// ImageStore persists uploaded product images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// ProductIndex mirrors active products into a search engine.
type ProductIndex interface {
	Index(ctx context.Context, p *entity.Product) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.Product, error)
}

// JobPublisher enqueues background jobs; helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Directory is the external auth directory owning credentials and sessions.
type Directory interface {
	// SignUp may return a nil session when the directory requires email confirmation.
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*entity.Identity, *entity.Session, error)
	SignIn(ctx context.Context, email, password string) (*entity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	UpdateMetadata(ctx context.Context, accessToken string, metadata map[string]any) error
}

// SessionPublisher broadcasts sign-in and sign-out events.
type SessionPublisher interface {
	Publish(ctx context.Context, evt session.Event) error
}

// ProfileMetrics counts lazily created profiles.
type ProfileMetrics interface {
	RecordProfileCreated()
}
