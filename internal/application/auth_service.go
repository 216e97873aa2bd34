package application

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	"github.com/oksasatya/go-community-market/internal/session"
)

// AuthService drives the auth directory and keeps profiles and the session
// store in step with it.
type AuthService struct {
	Directory Directory
	Profiles  *ProfileService
	Sessions  SessionPublisher
	Notifier  *Notifier
	Logger    *logrus.Logger
}

func NewAuthService(directory Directory, profiles *ProfileService, sessions SessionPublisher, notifier *Notifier, logger *logrus.Logger) *AuthService {
	return &AuthService{Directory: directory, Profiles: profiles, Sessions: sessions, Notifier: notifier, Logger: logger}
}

type SignUpInput struct {
	Email    string
	Password string
	Username string
}

// SignUpResult holds a nil Session when the directory requires email confirmation.
type SignUpResult struct {
	Identity *entity.Identity `json:"user"`
	Session  *entity.Session  `json:"session"`
	Profile  *entity.Profile  `json:"profile,omitempty"`
}

type SignInResult struct {
	Session *entity.Session `json:"session"`
	Profile *entity.Profile `json:"profile"`
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || in.Password == "" || username == "" {
		return nil, errInvalidInput("email, password and username are required")
	}
	if s.Directory == nil {
		return nil, errInternal(errors.New("auth directory not configured"))
	}

	metadata := map[string]any{"username": username, "role": entity.RoleStandard}
	identity, sess, err := s.Directory.SignUp(ctx, email, in.Password, metadata)
	if err != nil {
		return nil, directoryError(err, false)
	}

	res := &SignUpResult{Identity: identity, Session: sess}
	if identity == nil || identity.ID == "" {
		return res, nil
	}
	if identity.PreferredUsername() == "" {
		identity.Metadata = metadata
	}
	profile, err := s.Profiles.EnsureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	res.Profile = profile
	s.Notifier.Welcome(ctx, profile)
	if sess != nil {
		s.publish(ctx, session.Event{Type: session.SignedIn, UserID: identity.ID, SessionID: sess.Identity.SessionID, ExpiresAt: sess.ExpiresAt})
	}
	return res, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errInvalidInput("email and password are required")
	}
	if s.Directory == nil {
		return nil, errInternal(errors.New("auth directory not configured"))
	}
	sess, err := s.Directory.SignIn(ctx, email, password)
	if err != nil {
		return nil, directoryError(err, true)
	}
	identity := sess.Identity
	identity.AccessToken = sess.AccessToken
	profile, err := s.Profiles.EnsureProfile(ctx, &identity)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, session.Event{Type: session.SignedIn, UserID: identity.ID, SessionID: identity.SessionID, ExpiresAt: sess.ExpiresAt})
	return &SignInResult{Session: sess, Profile: profile}, nil
}

// SignOut ends the directory session and revokes its id everywhere. A
// directory failure does not keep the session alive locally.
func (s *AuthService) SignOut(ctx context.Context, identity *entity.Identity) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if s.Directory != nil && identity.AccessToken != "" {
		if err := s.Directory.SignOut(ctx, identity.AccessToken); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", identity.ID).Warn("directory sign-out failed")
		}
	}
	s.publish(ctx, session.Event{Type: session.SignedOut, UserID: identity.ID, SessionID: identity.SessionID, ExpiresAt: identity.ExpiresAt})
	return nil
}

// Session returns the reconciled profile of the current identity.
func (s *AuthService) Session(ctx context.Context, identity *entity.Identity) (*entity.Profile, error) {
	return s.Profiles.EnsureProfile(ctx, identity)
}

func (s *AuthService) publish(ctx context.Context, evt session.Event) {
	if s.Sessions == nil {
		return
	}
	if err := s.Sessions.Publish(ctx, evt); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("type", evt.Type).Warn("session event publish failed")
	}
}

type statusError interface {
	HTTPStatus() int
}

// directoryError maps a directory failure onto a reason. When credentials is
// set, a rejected request means the email or password was wrong.
func directoryError(err error, credentials bool) error {
	var se statusError
	if errors.As(err, &se) {
		st := se.HTTPStatus()
		switch {
		case credentials && (st == http.StatusBadRequest || st == http.StatusUnauthorized):
			return &Error{Reason: ReasonUnauthenticated, Message: "invalid email or password", Err: err}
		case st == http.StatusUnauthorized || st == http.StatusForbidden:
			return &Error{Reason: ReasonUnauthenticated, Message: err.Error(), Err: err}
		case st >= 400 && st < 500:
			return &Error{Reason: ReasonInvalidInput, Message: err.Error(), Err: err}
		}
	}
	return errStore(err)
}
