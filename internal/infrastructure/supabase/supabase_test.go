package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, mutate func(*Claims)) string {
	t.Helper()
	claims := &Claims{
		Email:        "alice@example.com",
		UserMetadata: map[string]any{"username": "alice"},
		SessionID:    "sid-1",
		Role:         "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "11111111-1111-1111-1111-111111111111",
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if mutate != nil {
		mutate(claims)
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifier_Valid(t *testing.T) {
	tok := signToken(t, testSecret, nil)
	id, err := NewVerifier(testSecret).Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", id.ID)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "sid-1", id.SessionID)
	assert.Equal(t, "alice", id.PreferredUsername())
	assert.Equal(t, tok, id.AccessToken)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret)
	cases := map[string]string{
		"wrong secret": signToken(t, "other", nil),
		"expired": signToken(t, testSecret, func(c *Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		}),
		"wrong audience": signToken(t, testSecret, func(c *Claims) { c.Audience = jwt.ClaimStrings{"anon"} }),
		"no subject":     signToken(t, testSecret, func(c *Claims) { c.Subject = "" }),
		"garbage":        "not-a-jwt",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestClient_SignIn(t *testing.T) {
	tok := signToken(t, testSecret, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "right" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  tok,
			"refresh_token": "refresh",
			"expires_in":    3600,
			"user":          map[string]any{"id": "11111111-1111-1111-1111-111111111111", "email": "alice@example.com"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "anon")
	sess, err := c.SignIn(context.Background(), "alice@example.com", "right")
	require.NoError(t, err)
	assert.Equal(t, tok, sess.AccessToken)
	assert.Equal(t, "refresh", sess.RefreshToken)
	assert.Equal(t, "sid-1", sess.Identity.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)

	_, err = c.SignIn(context.Background(), "alice@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus())
	assert.Equal(t, "Invalid login credentials", apiErr.Error())
}

func TestClient_SignUpPendingConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		var body struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "u-2",
			"email":         "bob@example.com",
			"user_metadata": body.Data,
		})
	}))
	defer srv.Close()

	id, sess, err := NewClient(srv.URL, "anon").SignUp(context.Background(), "bob@example.com", "pw", map[string]any{"username": "bob"})
	require.NoError(t, err)
	assert.Nil(t, sess)
	require.NotNil(t, id)
	assert.Equal(t, "u-2", id.ID)
	assert.Equal(t, "bob", id.PreferredUsername())
}

func TestClient_UpdateMetadataAndSignOutUseBearer(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "anon")
	require.NoError(t, c.UpdateMetadata(context.Background(), "user-token", map[string]any{"username": "x"}))
	require.NoError(t, c.SignOut(context.Background(), "user-token"))
	assert.Equal(t, []string{"PUT /auth/v1/user", "POST /auth/v1/logout"}, paths)
}

func TestErrorMessageFallback(t *testing.T) {
	assert.Equal(t, "auth directory returned 502", errorMessage(502, []byte("<html>")))
	assert.Equal(t, "User already registered", errorMessage(422, []byte(`{"code":422,"msg":"User already registered"}`)))
}
