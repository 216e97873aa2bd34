package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	"github.com/oksasatya/go-community-market/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type stubVerifier map[string]*entity.Identity

func (s stubVerifier) Verify(token string) (*entity.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

type stubRevoked map[string]bool

func (s stubRevoked) IsRevoked(_ context.Context, sid string) bool { return s[sid] }

func whoami(c *gin.Context) {
	if id := IdentityFrom(c); id != nil {
		c.String(http.StatusOK, id.ID)
		return
	}
	c.String(http.StatusOK, "anonymous")
}

func newAuthEngine() *gin.Engine {
	v := stubVerifier{
		"good":    {ID: "u1", SessionID: "s1"},
		"revoked": {ID: "u2", SessionID: "s2"},
	}
	r := gin.New()
	r.Use(RequestIDMiddleware(), Identity(v, stubRevoked{"s2": true}, nil))
	r.GET("/whoami", whoami)
	r.GET("/private", RequireIdentity(), whoami)
	return r
}

func TestIdentity_Resolution(t *testing.T) {
	r := newAuthEngine()
	cases := []struct {
		name   string
		setup  func(*http.Request)
		expect string
	}{
		{"header", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, "u1"},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: "good"}) }, "u1"},
		{"invalid token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, "anonymous"},
		{"revoked session", func(req *http.Request) { req.Header.Set("Authorization", "Bearer revoked") }, "anonymous"},
		{"none", func(*http.Request) {}, "anonymous"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.expect, rec.Body.String())
		})
	}
}

func TestRequireIdentity(t *testing.T) {
	r := newAuthEngine()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication required")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "bearer good")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestCredentialAuth(t *testing.T) {
	jwtm := helpers.NewJWTManager("secret", time.Hour)
	tok, _, err := jwtm.GenerateToken("acct-1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", CredentialAuth(jwtm), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxAccountIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "acct-1", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	in := "3f0c1d0e-8a3b-4e5f-9a7b-1c2d3e4f5a6b"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, in)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, in, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid", rec.Body.String())
}

func TestRealIPAndRestrictTo(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/internal", RestrictTo(AllowPrivateIP()), func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/internal", nil)
	req.Header.Set("X-Forwarded-For", "10.1.2.3, 8.8.8.8")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10.1.2.3", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/internal", nil)
	req.Header.Set("CF-Connecting-IP", "8.8.8.8")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimit_DisabledWithoutRedis(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, 0, remaining(5, 7))
	assert.Equal(t, 3, remaining(5, 2))
}
