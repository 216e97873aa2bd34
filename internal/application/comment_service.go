package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
)

type CommentService struct {
	Repo     repo.CommentRepository
	Products repo.ProductRepository
	Profiles *ProfileService
	Notifier *Notifier
	Logger   *logrus.Logger
}

func NewCommentService(repo repo.CommentRepository, products repo.ProductRepository, profiles *ProfileService, notifier *Notifier, logger *logrus.Logger) *CommentService {
	return &CommentService{Repo: repo, Products: products, Profiles: profiles, Notifier: notifier, Logger: logger}
}

func (s *CommentService) ListByProduct(ctx context.Context, productID string) ([]entity.CommentView, error) {
	out, err := s.Repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, errStore(err)
	}
	if out == nil {
		out = []entity.CommentView{}
	}
	return out, nil
}

// Create stores a trimmed comment by identity on productID. The product id
// comes from the route, the author from the identity.
func (s *CommentService) Create(ctx context.Context, identity *entity.Identity, productID, content string) (*entity.CommentView, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errInvalidInput("content is required")
	}
	author, err := s.Profiles.EnsureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	c := &entity.Comment{Content: content, UserID: identity.ID, ProductID: productID}
	view, err := s.Repo.Create(ctx, c)
	if err != nil {
		return nil, errStore(err)
	}
	s.notifyOwner(ctx, author, view)
	return view, nil
}

// Delete removes a comment of productID authored by identity.
func (s *CommentService) Delete(ctx context.Context, identity *entity.Identity, productID, commentID string) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	c, err := s.Repo.GetByID(ctx, commentID)
	if errors.Is(err, repo.ErrNotFound) {
		return errForbidden()
	}
	if err != nil {
		return errStore(err)
	}
	if c.ProductID != productID {
		return errForbidden()
	}
	if err := Authorize(identity, c.UserID).Err(); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, commentID); err != nil {
		return errStore(err)
	}
	return nil
}

// notifyOwner tells the product owner about a new comment. Failures are logged only.
func (s *CommentService) notifyOwner(ctx context.Context, author *entity.Profile, c *entity.CommentView) {
	if s.Notifier == nil || !s.Notifier.Enabled() {
		return
	}
	product, err := s.Products.GetByID(ctx, c.ProductID)
	if err != nil {
		s.warn(err, c.ProductID, "load product for notification failed")
		return
	}
	if product.UserID == author.ID {
		return
	}
	owner, err := s.Profiles.Repo.GetByID(ctx, product.UserID)
	if err != nil {
		s.warn(err, c.ProductID, "load owner for notification failed")
		return
	}
	s.Notifier.CommentPosted(ctx, owner, product, author, c)
}

func (s *CommentService) warn(err error, productID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("product_id", productID).Warn(msg)
	}
}
