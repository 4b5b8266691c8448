// Package supabase talks to the two Supabase surfaces the probe needs: edge
// functions and the PostgREST table API.
package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/hourlyprobe/pkg/logger"
)

// Default client configuration constants.
const (
	defaultTimeout  = 30 * time.Second
	userAgent       = "hourlyprobe"
	requestIDHeader = "X-Request-Id"
)

// Client is a minimal Supabase HTTP client bound to one project and key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	requestID  string
}

// NewClient creates a client for the project at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the normalized project URL.
func (c *Client) BaseURL() string { return c.baseURL }

// FunctionURL returns the invocation URL of an edge function.
func (c *Client) FunctionURL(name string) string {
	return c.baseURL + "/functions/v1/" + name
}

// TableURL returns the PostgREST URL of a table.
func (c *Client) TableURL(table string) string {
	return c.baseURL + "/rest/v1/" + table
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)
	if c.requestID != "" {
		req.Header.Set(requestIDHeader, c.requestID)
	}
	return req, nil
}

// do sends req and returns status and the fully read body.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(req.Context(), "failed to close response body", logger.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
