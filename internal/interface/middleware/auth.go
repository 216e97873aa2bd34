package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	"github.com/oksasatya/go-community-market/pkg/helpers"
	"github.com/oksasatya/go-community-market/pkg/response"
)

const (
	CtxIdentityKey = "identity"
	CtxUserIDKey   = "userID"
)

type TokenVerifier interface {
	Verify(token string) (*entity.Identity, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, sessionID string) bool
}

// bearerToken reads the Authorization header, then the session cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if tok, err := c.Cookie(helpers.AccessCookie); err == nil {
		return tok
	}
	return ""
}

// Identity resolves the caller from a directory access token. It never
// rejects: a missing, invalid or revoked token leaves the request anonymous.
// revoked may be nil.
func Identity(verifier TokenVerifier, revoked RevocationChecker, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			c.Next()
			return
		}
		id, err := verifier.Verify(tok)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Debug("ignoring invalid access token")
			}
			c.Next()
			return
		}
		if revoked != nil && revoked.IsRevoked(c.Request.Context(), id.SessionID) {
			c.Next()
			return
		}
		c.Set(CtxIdentityKey, id)
		c.Set(CtxUserIDKey, id.ID)
		c.Next()
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == nil {
			response.Abort(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity resolved for this request, or nil.
func IdentityFrom(c *gin.Context) *entity.Identity {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*entity.Identity)
	return id
}
