package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
	"github.com/oksasatya/go-community-market/pkg/helpers"
)

const (
	RecentProductsLimit = 6
	statsCacheKey       = "stats:site"
)

type Stats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalProducts int `json:"totalProducts"`
	TotalComments int `json:"totalComments"`
}

// DashboardService serves the read-only aggregate views. None of its methods
// return errors; failures are logged and degrade to empty or zero results.
type DashboardService struct {
	Profiles repo.ProfileRepository
	Products repo.ProductRepository
	Comments repo.CommentRepository
	Redis    *redis.Client
	CacheTTL time.Duration
	Logger   *logrus.Logger
}

func NewDashboardService(profiles repo.ProfileRepository, products repo.ProductRepository, comments repo.CommentRepository, rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *DashboardService {
	return &DashboardService{Profiles: profiles, Products: products, Comments: comments, Redis: rdb, CacheTTL: cacheTTL, Logger: logger}
}

// UserProducts lists every product owned by userID, any status, with comment counts.
func (s *DashboardService) UserProducts(ctx context.Context, userID string) []entity.ProductListItem {
	items, _, err := s.Products.List(ctx, repo.ProductFilter{OwnerID: userID})
	if err != nil {
		s.logFailure(err, "user products query failed", userID)
		return []entity.ProductListItem{}
	}
	if items == nil {
		return []entity.ProductListItem{}
	}
	return items
}

// UserComments lists comments written by userID with the commented product title.
func (s *DashboardService) UserComments(ctx context.Context, userID string) []entity.CommentView {
	out, err := s.Comments.ListByAuthor(ctx, userID)
	if err != nil {
		s.logFailure(err, "user comments query failed", userID)
		return []entity.CommentView{}
	}
	if out == nil {
		return []entity.CommentView{}
	}
	return out
}

// Stats counts profiles, products and comments concurrently. Either all three
// counts succeed or the zero value is returned.
func (s *DashboardService) Stats(ctx context.Context) Stats {
	if s.Redis != nil && s.CacheTTL > 0 {
		var cached Stats
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, statsCacheKey, &cached)
		if err != nil {
			s.logFailure(err, "stats cache read failed", "")
		}
		if ok {
			return cached
		}
	}

	var st Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalUsers, err = s.Profiles.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalProducts, err = s.Products.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalComments, err = s.Comments.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logFailure(err, "stats query failed", "")
		return Stats{}
	}

	if s.Redis != nil && s.CacheTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, statsCacheKey, st, s.CacheTTL); err != nil {
			s.logFailure(err, "stats cache write failed", "")
		}
	}
	return st
}

// RecentProducts returns the newest active products.
func (s *DashboardService) RecentProducts(ctx context.Context) []entity.ProductListItem {
	items, _, err := s.Products.List(ctx, repo.ProductFilter{Status: entity.ProductActive, Limit: RecentProductsLimit})
	if err != nil {
		s.logFailure(err, "recent products query failed", "")
		return []entity.ProductListItem{}
	}
	if items == nil {
		return []entity.ProductListItem{}
	}
	return items
}

func (s *DashboardService) logFailure(err error, msg, userID string) {
	if s.Logger == nil {
		return
	}
	entry := s.Logger.WithError(err)
	if userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	entry.Error(msg)
}
