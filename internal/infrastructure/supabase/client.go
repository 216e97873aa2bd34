// Package supabase talks to a GoTrue compatible auth directory.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
)

// APIError is a non-2xx directory response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) HTTPStatus() int { return e.StatusCode }

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/auth/v1",
		anonKey: anonKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type user struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *user  `json:"user"`
}

// signupResponse covers both shapes: a session when the project auto-confirms,
// or the bare user when email confirmation is pending.
type signupResponse struct {
	tokenResponse
	user
}

func (u *user) identity() *entity.Identity {
	return &entity.Identity{ID: u.ID, Email: u.Email, Metadata: u.UserMetadata}
}

func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*entity.Identity, *entity.Session, error) {
	var out signupResponse
	body := map[string]any{"email": email, "password": password, "data": metadata}
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &out); err != nil {
		return nil, nil, err
	}
	if out.AccessToken != "" {
		sess, err := out.tokenResponse.session()
		if err != nil {
			return nil, nil, err
		}
		id := sess.Identity
		return &id, sess, nil
	}
	if out.user.ID == "" {
		return nil, nil, nil
	}
	return out.user.identity(), nil, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	var out tokenResponse
	body := map[string]any{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &out); err != nil {
		return nil, err
	}
	return out.session()
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *Client) UpdateMetadata(ctx context.Context, accessToken string, metadata map[string]any) error {
	return c.do(ctx, http.MethodPut, "/user", accessToken, map[string]any{"data": metadata}, nil)
}

func (t *tokenResponse) session() (*entity.Session, error) {
	if t.AccessToken == "" {
		return nil, errors.New("directory returned no access token")
	}
	id, err := identityFromToken(t.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}
	if t.User != nil {
		if id.ID == "" {
			id.ID = t.User.ID
		}
		if id.Email == "" {
			id.Email = t.User.Email
		}
		if id.Metadata == nil {
			id.Metadata = t.User.UserMetadata
		}
	}

	sess := &entity.Session{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken, Identity: *id}
	switch {
	case t.ExpiresAt > 0:
		sess.ExpiresAt = time.Unix(t.ExpiresAt, 0).UTC()
	case t.ExpiresIn > 0:
		sess.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second).UTC()
	default:
		sess.ExpiresAt = id.ExpiresAt
	}
	sess.Identity.ExpiresAt = sess.ExpiresAt
	return sess, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// errorMessage extracts the human readable text from the several error
// shapes the directory uses.
func errorMessage(status int, raw []byte) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil {
		for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
			if s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("auth directory returned %d", status)
}
