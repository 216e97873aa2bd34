package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
)

const fallbackUsername = "user"

type ProfileService struct {
	Repo      repo.ProfileRepository
	Directory Directory
	Metrics   ProfileMetrics
	Logger    *logrus.Logger
}

func NewProfileService(repo repo.ProfileRepository, directory Directory, metrics ProfileMetrics, logger *logrus.Logger) *ProfileService {
	return &ProfileService{Repo: repo, Directory: directory, Metrics: metrics, Logger: logger}
}

// DeriveUsername picks the metadata username, then the email local part, then "user".
func DeriveUsername(identity *entity.Identity) string {
	if u := identity.PreferredUsername(); u != "" {
		return u
	}
	if identity != nil {
		local, _, _ := strings.Cut(identity.Email, "@")
		if local = strings.TrimSpace(local); local != "" {
			return local
		}
	}
	return fallbackUsername
}

// EnsureProfile returns the profile of identity, creating it on first sight.
// Safe to call on every request: at most one write happens, and losing an
// insert race to a concurrent caller is not an error.
func (s *ProfileService) EnsureProfile(ctx context.Context, identity *entity.Identity) (*entity.Profile, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	p, err := s.Repo.GetByID(ctx, identity.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, errStore(err)
	}

	p = &entity.Profile{
		ID:       identity.ID,
		Username: DeriveUsername(identity),
		Email:    identity.Email,
		Role:     entity.RoleStandard,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, errStore(err)
		}
		// another caller created it first
		existing, gErr := s.Repo.GetByID(ctx, identity.ID)
		if gErr != nil {
			return nil, errStore(gErr)
		}
		return existing, nil
	}
	if s.Metrics != nil {
		s.Metrics.RecordProfileCreated()
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": p.ID, "username": p.Username}).Info("profile created")
	}
	return p, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*entity.Profile, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errNotFound("profile not found")
	}
	if err != nil {
		return nil, errStore(err)
	}
	return p, nil
}

// UpdateProfileInput carries optional fields; nil leaves a field untouched.
type UpdateProfileInput struct {
	Username *string
	Bio      *string
	Website  *string
}

// UpdateProfile edits the caller's own profile. The directory metadata is
// updated first so both records stay in step.
func (s *ProfileService) UpdateProfile(ctx context.Context, identity *entity.Identity, in UpdateProfileInput) (*entity.Profile, error) {
	p, err := s.EnsureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	meta := map[string]any{}
	if in.Username != nil {
		u := strings.TrimSpace(*in.Username)
		if u == "" {
			return nil, errInvalidInput("username must not be empty")
		}
		p.Username = u
		meta["username"] = u
	}
	if in.Bio != nil {
		p.Bio = optionalText(*in.Bio)
		meta["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Website != nil {
		p.Website = optionalText(*in.Website)
		meta["website"] = strings.TrimSpace(*in.Website)
	}
	if len(meta) == 0 {
		return p, nil
	}

	if s.Directory != nil && identity.AccessToken != "" {
		if err := s.Directory.UpdateMetadata(ctx, identity.AccessToken, meta); err != nil {
			return nil, errStore(err)
		}
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, errStore(err)
	}
	return p, nil
}

// optionalText trims s and maps blank to nil.
func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
