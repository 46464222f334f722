package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
)

// DefaultBaseURL is the Feishu open platform endpoint.
const DefaultBaseURL = "https://open.feishu.cn"

// tokenMargin is subtracted from the reported token lifetime so we refresh
// before the server-side expiry.
const tokenMargin = 5 * time.Minute

// Client drives the Feishu open-apis surface. The bitable and im calls go
// through the official SDK; the token exchange and wiki node lookup stay
// plain REST so startup can fail fast with a typed AuthError and so the
// wiki call matches the documented endpoint exactly.
type Client struct {
	api        *lark.Client
	httpClient *http.Client
	baseURL    string
	appID      string
	appSecret  string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Feishu API client for the given app credentials.
func NewClient(appID, appSecret string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		appID:      appID,
		appSecret:  appSecret,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.api = lark.NewClient(appID, appSecret,
		lark.WithOpenBaseUrl(c.baseURL),
		lark.WithHttpClient(c.httpClient),
	)
	return c
}

// apiResponse is the common envelope of every open-apis response.
type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

// TenantAccessToken exchanges the app credentials for a tenant access token,
// returning a cached value while it is still valid.
func (c *Client) TenantAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"app_id":     c.appID,
		"app_secret": c.appSecret,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/open-apis/auth/v3/tenant_access_token/internal", bytes.NewReader(payload))
	if err != nil {
		return "", &AuthError{Msg: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Msg: "request tenant_access_token", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Msg: "read response", Err: err}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &AuthError{Msg: "decode response", Err: err}
	}
	if tr.Code != 0 {
		return "", &AuthError{Msg: fmt.Sprintf("code=%d msg=%s", tr.Code, tr.Msg)}
	}

	c.token = tr.TenantAccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.Expire)*time.Second - tokenMargin)
	log.Printf("Tenant access token refreshed, expires in %ds", tr.Expire)

	return c.token, nil
}

// do issues an authorized request and decodes the common response envelope.
// A non-zero API code or transport failure comes back as *RemoteCallError.
func (c *Client) do(ctx context.Context, op, method, path string, body interface{}) (json.RawMessage, error) {
	token, err := c.TenantAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &RemoteCallError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &RemoteCallError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteCallError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteCallError{Op: op, Err: err}
	}

	var ar apiResponse
	if err := json.Unmarshal(raw, &ar); err != nil {
		return nil, &RemoteCallError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if ar.Code != 0 {
		return nil, &RemoteCallError{Op: op, Code: ar.Code, Msg: ar.Msg}
	}

	return ar.Data, nil
}
