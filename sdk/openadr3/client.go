// Package openadr3 is the client SDK for OpenADR 3 VTNs: typed resource
// access, client-credentials authentication with a cached bearer token,
// WebSocket notifications, local VTN discovery, and a timeline engine
// that resolves event intervals by priority.
package openadr3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"openadr/internal/shared/logger"
	"openadr/internal/wire"
)

// pageSize is the list page size; a shorter page ends the pagination
// loop.
const pageSize = 50

// refreshMargin renews the cached token this long before it expires.
const refreshMargin = time.Minute

// defaultTokenTTL applies when the token endpoint omits expires_in.
const defaultTokenTTL = time.Hour

// Credentials configures the client-credentials flow against the VTN's
// token endpoint.
type Credentials struct {
	ClientID     string
	ClientSecret string
	// TokenURL overrides the default <baseURL>/auth/token.
	TokenURL string
}

// Client talks to one VTN. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Interface

	credentials *Credentials
	staticToken string

	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithCredentials enables the client-credentials flow.
func WithCredentials(creds Credentials) Option {
	return func(client *Client) {
		client.credentials = &creds
	}
}

// WithStaticToken uses a pre-issued bearer token instead of the token
// endpoint.
func WithStaticToken(token string) Option {
	return func(client *Client) {
		client.staticToken = token
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Interface) Option {
	return func(client *Client) {
		client.logger = log
	}
}

// NewClient creates a client for the VTN at baseURL. baseURL includes
// the OpenADR base path, e.g. "http://vtn.local:3000/openadr3/3.0.1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.NewLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// accessToken returns a valid bearer token, fetching or renewing one
// when needed.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.staticToken != "" {
		return c.staticToken, nil
	}
	if c.credentials == nil {
		return "", fmt.Errorf("no credentials configured")
	}

	c.mu.RLock()
	token, expiry := c.token, c.tokenExpiry
	c.mu.RUnlock()
	if token != "" && time.Until(expiry) > refreshMargin {
		return token, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have refreshed while we waited for the lock.
	if c.token != "" && time.Until(c.tokenExpiry) > refreshMargin {
		return c.token, nil
	}

	token, expiry, err := c.fetchToken(ctx)
	if err != nil {
		return "", err
	}
	c.token, c.tokenExpiry = token, expiry
	return token, nil
}

func (c *Client) fetchToken(ctx context.Context) (string, time.Time, error) {
	tokenURL := c.credentials.TokenURL
	if tokenURL == "" {
		tokenURL = c.baseURL + "/auth/token"
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.credentials.ClientID},
		"client_secret": {c.credentials.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to request token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var oauthErr wire.OAuthError
		if jsonErr := json.Unmarshal(body, &oauthErr); jsonErr == nil && oauthErr.ErrorCode != "" {
			return "", time.Time{}, oauthErr
		}
		return "", time.Time{}, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResp wire.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if !strings.EqualFold(tokenResp.TokenType, "Bearer") {
		return "", time.Time{}, fmt.Errorf("unsupported token type %q", tokenResp.TokenType)
	}
	if tokenResp.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("token endpoint returned an empty token")
	}

	ttl := defaultTokenTTL
	if tokenResp.ExpiresIn > 0 {
		ttl = time.Duration(tokenResp.ExpiresIn) * time.Second
	}
	return tokenResp.AccessToken, time.Now().Add(ttl), nil
}

// do performs one request and decodes the JSON response into result.
// Error responses decode into wire.Problem, which is returned as the
// error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var problem wire.Problem
		if jsonErr := json.Unmarshal(respBody, &problem); jsonErr == nil && problem.Status != 0 {
			return &problem
		}
		return fmt.Errorf("vtn returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// listPage fetches one page of a list endpoint.
func listPage[T any](ctx context.Context, c *Client, path string, query url.Values, skip int64) ([]T, error) {
	paged := url.Values{}
	for k, vs := range query {
		paged[k] = vs
	}
	paged.Set("skip", strconv.FormatInt(skip, 10))
	paged.Set("limit", strconv.Itoa(pageSize))

	var page []T
	if err := c.do(ctx, http.MethodGet, path, paged, nil, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// listAll walks a list endpoint page by page. A page shorter than the
// requested size ends the walk.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var all []T
	var skip int64
	for {
		page, err := listPage[T](ctx, c, path, query, skip)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		skip += int64(len(page))
	}
}
