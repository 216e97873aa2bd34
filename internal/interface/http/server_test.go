package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-market/internal/application"
	"github.com/oksasatya/go-community-market/internal/domain/entity"
	"github.com/oksasatya/go-community-market/internal/infrastructure/memory"
	"github.com/oksasatya/go-community-market/internal/infrastructure/supabase"
	handlers "github.com/oksasatya/go-community-market/internal/interface/http"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
	"github.com/oksasatya/go-community-market/internal/metrics"
	"github.com/oksasatya/go-community-market/internal/router"
	"github.com/oksasatya/go-community-market/internal/router/modules"
	"github.com/oksasatya/go-community-market/internal/session"
	"github.com/oksasatya/go-community-market/pkg/helpers"
	"github.com/oksasatya/go-community-market/pkg/validation"
)

const directorySecret = "directory-secret"

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	t        *testing.T
	engine   *gin.Engine
	store    *memory.Store
	sessions *session.Store
	dir      *stubDirectory
	creds    *helpers.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()
	logger, _ := test.NewNullLogger()

	st := memory.NewStore()
	sessions := session.NewStore(nil, "test", logger)
	dir := &stubDirectory{t: t, passwords: map[string]string{}}
	creds := helpers.NewJWTManager("credential-secret", time.Hour)

	profiles := application.NewProfileService(st.Profiles(), dir, nil, logger)
	products := application.NewProductService(st.Products(), profiles, nil, nil, logger)
	comments := application.NewCommentService(st.Comments(), st.Products(), profiles, nil, logger)
	dashboard := application.NewDashboardService(st.Profiles(), st.Products(), st.Comments(), nil, 0, logger)
	auth := application.NewAuthService(dir, profiles, sessions, nil, logger)
	credentials := application.NewCredentialService(st.Accounts(), creds, logger)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.Metrics(collector))
	registry := router.NewRegistry(r)
	registry.Use(middleware.Identity(supabase.NewVerifier(directorySecret), sessions, logger))
	registry.Add(modules.NewSystemModule(handlers.NewSystemHandler("test", map[string]handlers.Pinger{
		"store": func(context.Context) error { return nil },
	}), reg, true))
	registry.Add(modules.NewSessionModule(handlers.NewSessionHandler(auth, logger, "localhost", false), nil))
	registry.Add(modules.NewCredentialModule(handlers.NewCredentialHandler(credentials, logger), creds, nil))
	registry.Add(modules.NewProductModule(handlers.NewProductHandler(products, logger, 1<<20), handlers.NewCommentHandler(comments, logger), nil))
	registry.Add(modules.NewDashboardModule(handlers.NewDashboardHandler(dashboard, profiles, logger), nil))
	registry.RegisterAll()

	return &testServer{t: t, engine: r, store: st, sessions: sessions, dir: dir, creds: creds}
}

// do sends a JSON request with an optional bearer token and decodes the envelope.
func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "127.0.0.1:40000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (int, envelope) {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	var env envelope
	if bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// token signs a directory access token for id.
func token(t *testing.T, id, email, username string) string {
	t.Helper()
	claims := &supabase.Claims{
		Email:        email,
		UserMetadata: map[string]any{"username": username},
		SessionID:    "sess-" + id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Audience:  jwt.ClaimStrings{supabase.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(directorySecret))
	require.NoError(t, err)
	return s
}

const (
	aliceID = "11111111-1111-4111-8111-111111111111"
	bobID   = "22222222-2222-4222-8222-222222222222"
)

func aliceToken(t *testing.T) string { return token(t, aliceID, "alice@example.com", "alice") }
func bobToken(t *testing.T) string   { return token(t, bobID, "bob@example.com", "bob") }

// stubDirectory issues real signed tokens so the identity middleware accepts them.
type stubDirectory struct {
	t         *testing.T
	passwords map[string]string
	signedOut int
}

type directoryErr struct{ status int }

func (e *directoryErr) Error() string   { return "directory rejected request" }
func (e *directoryErr) HTTPStatus() int { return e.status }

func (d *stubDirectory) session(email string) *entity.Session {
	id := "33333333-3333-4333-8333-333333333333"
	tok := token(d.t, id, email, "carol")
	return &entity.Session{
		AccessToken:  tok,
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
		Identity:     entity.Identity{ID: id, Email: email, Metadata: map[string]any{"username": "carol"}, SessionID: "sess-" + id},
	}
}

func (d *stubDirectory) SignUp(_ context.Context, email, password string, _ map[string]any) (*entity.Identity, *entity.Session, error) {
	if _, ok := d.passwords[email]; ok {
		return nil, nil, &directoryErr{status: http.StatusUnprocessableEntity}
	}
	d.passwords[email] = password
	sess := d.session(email)
	ident := sess.Identity
	return &ident, sess, nil
}

func (d *stubDirectory) SignIn(_ context.Context, email, password string) (*entity.Session, error) {
	if pw, ok := d.passwords[email]; !ok || pw != password {
		return nil, &directoryErr{status: http.StatusBadRequest}
	}
	return d.session(email), nil
}

func (d *stubDirectory) SignOut(context.Context, string) error {
	d.signedOut++
	return nil
}

func (d *stubDirectory) UpdateMetadata(context.Context, string, map[string]any) error {
	return nil
}
