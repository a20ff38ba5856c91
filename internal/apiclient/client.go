// Package apiclient talks to the banking backend on behalf of the signed-in user.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"financial-app/internal/session"

	"github.com/google/uuid"
)

// Client is the single point of contact with the backend. It attaches the
// stored credential to every request and normalizes failures into NetworkError,
// APIError and DecodeError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the resolved base URL, e.g. "http://127.0.0.1:9000/api".
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger failed requests are reported to.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client reading credentials from store. The base URL is resolved
// once here; see ResolveBaseURL.
func New(store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    ResolveBaseURL(""),
		httpClient: http.DefaultClient,
		store:      store,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint prefix requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsAuthenticated reports whether a credential is stored. It never contacts the
// backend, so an expired token still reports true.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	_, ok, err := c.store.Get(ctx)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Request sends an arbitrary call through the same pipeline as the typed
// operations. Entries in header replace the defaults, Authorization included.
func (c *Client) Request(ctx context.Context, method, path string, payload any, header http.Header) ([]byte, error) {
	return c.do(ctx, method, path, payload, header)
}

// do runs the request pipeline and returns the body of a success response.
func (c *Client) do(ctx context.Context, method, path string, payload any, header http.Header) ([]byte, error) {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	token, ok, err := c.store.Get(ctx)
	if err != nil {
		c.logger.Printf("Failed to get stored token: %v", err)
	} else if ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for k, vs := range header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := &NetworkError{Method: method, URL: url, Err: err}
		c.logger.Printf("API request failed: %v", netErr)
		return nil, netErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{Method: method, URL: url, Err: fmt.Errorf("read response body: %w", err)}
		c.logger.Printf("API request failed: %v", netErr)
		return nil, netErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(data)
		if strings.TrimSpace(msg) == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: msg}
		c.logger.Printf("API request failed: %s %s: status %d: %s", method, url, resp.StatusCode, msg)
		return nil, apiErr
	}

	return data, nil
}

// doJSON runs the pipeline and decodes a success body into out.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	data, err := c.do(ctx, method, path, payload, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		decErr := &DecodeError{URL: c.baseURL + path, Body: data, Err: err}
		c.logger.Printf("API request failed: %v", decErr)
		return decErr
	}
	return nil
}
