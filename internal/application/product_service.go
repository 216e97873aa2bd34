package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	defaultSearchSize = 10
	maxSearchSize     = 50
)

type ProductService struct {
	Repo     repo.ProductRepository
	Profiles *ProfileService
	Images   ImageStore
	Index    ProductIndex
	Logger   *logrus.Logger
}

func NewProductService(repo repo.ProductRepository, profiles *ProfileService, images ImageStore, index ProductIndex, logger *logrus.Logger) *ProductService {
	return &ProductService{Repo: repo, Profiles: profiles, Images: images, Index: index, Logger: logger}
}

type ListProductsInput struct {
	Page   int
	Limit  int
	Search string
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type ProductPage struct {
	Products   []entity.ProductListItem `json:"products"`
	Pagination Pagination               `json:"pagination"`
}

// List returns one page of active products, newest first.
func (s *ProductService) List(ctx context.Context, in ListProductsInput) (*ProductPage, error) {
	page, limit := in.Page, in.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	items, total, err := s.Repo.List(ctx, repo.ProductFilter{
		Status: entity.ProductActive,
		Search: strings.TrimSpace(in.Search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, errStore(err)
	}
	if items == nil {
		items = []entity.ProductListItem{}
	}
	return &ProductPage{
		Products: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*entity.ProductDetail, error) {
	d, err := s.Repo.GetDetail(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errNotFound("product not found")
	}
	if err != nil {
		return nil, errStore(err)
	}
	return d, nil
}

type CreateProductInput struct {
	Title       string
	Description string
	ImageURL    string
}

// Create stores a new active product owned by identity.
func (s *ProductService) Create(ctx context.Context, identity *entity.Identity, in CreateProductInput) (*entity.Product, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" || desc == "" {
		return nil, errInvalidInput("title and description are required")
	}
	if _, err := s.Profiles.EnsureProfile(ctx, identity); err != nil {
		return nil, err
	}

	p := &entity.Product{
		Title:       title,
		Description: desc,
		ImageURL:    optionalText(in.ImageURL),
		UserID:      identity.ID,
		Status:      entity.ProductActive,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, errStore(err)
	}
	s.reindex(ctx, p)
	return p, nil
}

// UpdateProductInput carries optional fields; nil leaves a field untouched.
type UpdateProductInput struct {
	Title       *string
	Description *string
	ImageURL    *string
	Status      *string
}

func (s *ProductService) Update(ctx context.Context, identity *entity.Identity, id string, in UpdateProductInput) (*entity.Product, error) {
	p, err := s.loadOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, errInvalidInput("title must not be empty")
		}
		p.Title = t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return nil, errInvalidInput("description must not be empty")
		}
		p.Description = d
	}
	if in.ImageURL != nil {
		p.ImageURL = optionalText(*in.ImageURL)
	}
	if in.Status != nil {
		st := entity.ProductStatus(strings.TrimSpace(*in.Status))
		if !st.Valid() {
			return nil, errInvalidInput("status must be one of active, inactive, draft")
		}
		p.Status = st
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, errStore(err)
	}
	s.reindex(ctx, p)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, identity *entity.Identity, id string) error {
	if _, err := s.loadOwned(ctx, identity, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return errStore(err)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			s.warn(err, id, "search index removal failed")
		}
	}
	return nil
}

// UploadImage stores an image for an owned product and points image_url at it.
func (s *ProductService) UploadImage(ctx context.Context, identity *entity.Identity, id string, r io.Reader, filename, contentType string) (*entity.Product, error) {
	p, err := s.loadOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if s.Images == nil {
		return nil, errInternal(errors.New("image storage not configured"))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errInvalidInput("file must be an image")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("products", p.ID, uuid.NewString()+ext))
	url, err := s.Images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, errStore(err)
	}
	p.ImageURL = &url
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, errStore(err)
	}
	s.reindex(ctx, p)
	return p, nil
}

// Search queries the search index, or the store's substring search when no
// index is configured.
func (s *ProductService) Search(ctx context.Context, q string, size int) ([]entity.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errInvalidInput("query is required")
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	if s.Index != nil {
		res, err := s.Index.Search(ctx, q, size)
		if err != nil {
			return nil, errStore(err)
		}
		return res, nil
	}
	items, _, err := s.Repo.List(ctx, repo.ProductFilter{Status: entity.ProductActive, Search: q, Limit: size})
	if err != nil {
		return nil, errStore(err)
	}
	out := make([]entity.Product, 0, len(items))
	for _, it := range items {
		out = append(out, it.Product)
	}
	return out, nil
}

// loadOwned re-reads the product and checks the stored owner against identity.
// A missing product is reported as forbidden.
func (s *ProductService) loadOwned(ctx context.Context, identity *entity.Identity, id string) (*entity.Product, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errForbidden()
	}
	if err != nil {
		return nil, errStore(err)
	}
	if err := Authorize(identity, p.UserID).Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) reindex(ctx context.Context, p *entity.Product) {
	if s.Index == nil {
		return
	}
	var err error
	if p.Status == entity.ProductActive {
		err = s.Index.Index(ctx, p)
	} else {
		err = s.Index.Remove(ctx, p.ID)
	}
	if err != nil {
		s.warn(err, p.ID, "search index update failed")
	}
}

func (s *ProductService) warn(err error, productID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("product_id", productID).Warn(msg)
	}
}
