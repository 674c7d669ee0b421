package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/lirra/internal/common"
)

const apiPrefix = "/api/v1"

// Page mirrors the paginated listings returned by management actions.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// HTTPClient is safe for concurrent use.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken installs a preissued access token, e.g. from LIRRA_ADMIN_TOKEN.
// Such a session cannot be refreshed.
func (c *HTTPClient) SetToken(accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = accessToken, ""
}

func (c *HTTPClient) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) error {
	var pair tokenPair
	body := map[string]string{"email": email, "password": string(password)}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &pair); err != nil {
		return err
	}
	c.mu.Lock()
	c.accessToken, c.refreshToken = pair.AccessToken, pair.RefreshToken
	c.mu.Unlock()
	return nil
}

// Logout revokes the refresh token server-side, if any, and forgets the
// session either way.
func (c *HTTPClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.accessToken, c.refreshToken = "", ""
	c.mu.Unlock()

	if refresh == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/auth/logout", "", map[string]string{"refresh_token": refresh}, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// Manage runs one management action and decodes its result into out.
func (c *HTTPClient) Manage(ctx context.Context, action string, params map[string]any, out any) error {
	body := maps.Clone(params)
	if body == nil {
		body = map[string]any{}
	}
	body["action"] = action
	return c.authorized(ctx, http.MethodPost, "/admin/management", body, out)
}

func (c *HTTPClient) authorized(ctx context.Context, method, path string, body, out any) error {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token == "" {
		return ErrUnauthorized
	}

	err := c.do(ctx, method, path, token, body, out)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	token, rerr := c.refresh(ctx)
	if rerr != nil {
		return err
	}
	return c.do(ctx, method, path, token, body, out)
}

func (c *HTTPClient) refresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()
	if refresh == "" {
		return "", ErrUnauthorized
	}

	var pair tokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh}, &pair); err != nil {
		c.mu.Lock()
		c.accessToken, c.refreshToken = "", ""
		c.mu.Unlock()
		return "", err
	}

	c.mu.Lock()
	c.accessToken, c.refreshToken = pair.AccessToken, pair.RefreshToken
	c.mu.Unlock()
	return pair.AccessToken, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var env struct {
			Error string `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(raw, &env) == nil && env.Error != "" {
			msg = env.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
