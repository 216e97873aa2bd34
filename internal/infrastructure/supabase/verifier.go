package supabase

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
)

const Audience = "authenticated"

var ErrInvalidToken = errors.New("invalid access token")

// Claims is the payload of a directory access token.
type Claims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	SessionID    string         `json:"session_id"`
	Role         string         `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) identity(token string) *entity.Identity {
	id := &entity.Identity{
		ID:          c.Subject,
		Email:       c.Email,
		Metadata:    c.UserMetadata,
		SessionID:   c.SessionID,
		AccessToken: token,
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// Verifier checks access tokens locally against the project JWT secret.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithAudience(Audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(5*time.Second),
		),
	}
}

func (v *Verifier) Verify(token string) (*entity.Identity, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.identity(token), nil
}

// identityFromToken reads the claims of a token the directory just issued,
// without checking the signature.
func identityFromToken(token string) (*entity.Identity, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims.identity(token), nil
}
