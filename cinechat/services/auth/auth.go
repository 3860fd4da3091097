// cinechat/services/auth/auth.go
package auth

import (
	"bytes"
	"cinechat/cinechat/utils/logging"
	"cinechat/cinechat/utils/types"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Client wraps the external identity issuer. The token it returns is
// opaque: the client stores and replays it, nothing more.
type Client struct {
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// Login exchanges credentials for an identity. Rejections carry the
// issuer's detail string when one is present.
func (c *Client) Login(ctx context.Context, email, password string) (types.Identity, error) {
	defer logging.LogDuration(ctx, "auth_login")()

	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Detail   string `json:"detail"`
	}
	if err := c.post(ctx, "/login", types.LoginRequest{Email: email, Password: password}, &payload); err != nil {
		if payload.Detail != "" {
			return types.Identity{}, errors.New(payload.Detail)
		}
		return types.Identity{}, err
	}

	token := "logged-in"
	if payload.Username != "" {
		token = "user:" + payload.Username
	}
	return types.Identity{Token: token, Username: payload.Username, Email: payload.Email}, nil
}

// Signup registers a new user. The caller logs in separately afterwards.
func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	defer logging.LogDuration(ctx, "auth_signup")()

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := c.post(ctx, "/signup", types.SignupRequest{Username: username, Email: email, Password: password}, &payload); err != nil {
		if payload.Detail != "" {
			return errors.New(payload.Detail)
		}
		return err
	}
	return nil
}

// post decodes the body into resp even on non-2xx responses, so callers
// can surface the issuer's detail field.
func (c *Client) post(ctx context.Context, path string, body interface{}, resp interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	logging.RequestLogger.Info("auth request", zap.String("path", path))
	r, err := http.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	defer r.Body.Close()
	_ = json.NewDecoder(r.Body).Decode(resp)
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		return fmt.Errorf("bad status: %d", r.StatusCode)
	}
	return nil
}
