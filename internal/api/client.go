package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beehive-tools/hivecli/internal/models"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "hivecli/1.0"
)

// Client is an HTTP client for the beehive REST API.
type Client struct {
	endpoint   models.Endpoint
	token      string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL overrides the host part of the endpoint.
func WithBaseURL(url string) ClientOption {
	return func(client *Client) {
		client.endpoint.Host = url
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) ClientOption {
	return func(client *Client) {
		client.token = token
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		if d > 0 {
			client.httpClient.Timeout = d
		}
	}
}

// NewClient creates a new API client for the given endpoint.
func NewClient(endpoint models.Endpoint, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromCredentials creates a client that authenticates with creds.
func NewClientFromCredentials(endpoint models.Endpoint, creds models.Credentials, opts ...ClientOption) *Client {
	return NewClient(endpoint, append([]ClientOption{WithToken(creds.Token)}, opts...)...)
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() models.Endpoint {
	return c.endpoint
}

// request performs an HTTP request and returns the response body.
func (c *Client) request(ctx context.Context, method, url string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// get performs a GET request.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	return c.request(ctx, http.MethodGet, url, nil)
}

// post performs a POST request.
func (c *Client) post(ctx context.Context, url string, body interface{}) ([]byte, error) {
	return c.request(ctx, http.MethodPost, url, body)
}

// put performs a PUT request.
func (c *Client) put(ctx context.Context, url string, body interface{}) ([]byte, error) {
	return c.request(ctx, http.MethodPut, url, body)
}

// delete performs a DELETE request.
func (c *Client) delete(ctx context.Context, url string) ([]byte, error) {
	return c.request(ctx, http.MethodDelete, url, nil)
}
