// Package erp provides a client for the Frappe/ERPNext REST and RPC APIs.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// AuthMethod selects how requests are authenticated.
type AuthMethod string

const (
	// AuthAPIKey sends "Authorization: token key:secret" on every request.
	AuthAPIKey AuthMethod = "apikey"
	// AuthSession sends the stored session id as a "sid" cookie.
	AuthSession AuthMethod = "session"
)

// ErrNoResponse marks a connectivity failure: the request never produced an
// HTTP response. Checkout uses this to route payloads to the offline queue.
var ErrNoResponse = errors.New("no response from server")

// APIError is a server-rejected request (an HTTP response with error status).
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// IsNoResponse reports whether err is a connectivity failure rather than a
// server rejection.
func IsNoResponse(err error) bool {
	return errors.Is(err, ErrNoResponse)
}

// Client is a Frappe/ERPNext API client.
type Client struct {
	baseURL     string
	authMethod  AuthMethod
	apiKey      string
	apiSecret   string
	token       func() string
	onForbidden func()
	httpClient  *http.Client
}

// ClientOption is a functional option for configuring the client.
type ClientOption func(*Client)

// WithAPIKey authenticates with a Frappe API key/secret pair.
func WithAPIKey(key, secret string) ClientOption {
	return func(c *Client) {
		c.authMethod = AuthAPIKey
		c.apiKey = key
		c.apiSecret = secret
	}
}

// WithSessionToken authenticates with a session id supplied by fn on each
// request (typically backed by the durable token store).
func WithSessionToken(fn func() string) ClientOption {
	return func(c *Client) {
		c.authMethod = AuthSession
		c.token = fn
	}
}

// WithForbiddenHook registers fn to run whenever the server answers 403,
// so the caller can invalidate its stored session token.
func WithForbiddenHook(fn func()) ClientOption {
	return func(c *Client) {
		c.onForbidden = fn
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new ERP API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// resourceEnvelope wraps /api/resource responses.
type resourceEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// methodEnvelope wraps /api/method responses.
type methodEnvelope struct {
	Message json.RawMessage `json:"message"`
}

// doGet performs a GET request and decodes the envelope named by key
// ("data" for resource endpoints, "message" for method endpoints).
func (c *Client) doGet(ctx context.Context, endpoint string, query url.Values, result interface{}) error {
	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, endpoint, result)
}

// doPost performs a POST request with a JSON body.
func (c *Client) doPost(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, endpoint, result)
}

func (c *Client) do(req *http.Request, endpoint string, result interface{}) error {
	c.authenticate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden && c.onForbidden != nil {
		c.onForbidden()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if result == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	payload := raw
	if isMethodEndpoint(endpoint) {
		var env methodEnvelope
		if err := json.Unmarshal(raw, &env); err == nil && len(env.Message) > 0 {
			payload = env.Message
		}
	} else {
		var env resourceEnvelope
		if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
			payload = env.Data
		}
	}

	if err := json.Unmarshal(payload, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) authenticate(req *http.Request) {
	switch c.authMethod {
	case AuthAPIKey:
		if c.apiKey != "" {
			req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", c.apiKey, c.apiSecret))
		}
	case AuthSession:
		if c.token != nil {
			if sid := c.token(); sid != "" {
				req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
			}
		}
	}
}

func isMethodEndpoint(endpoint string) bool {
	return len(endpoint) >= len("/api/method/") && endpoint[:len("/api/method/")] == "/api/method/"
}
