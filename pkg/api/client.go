// Package api is a Go client for the Polaris HTTP API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/go-resty/resty/v2"
)

// Client represents a Polaris API client
type Client struct {
	rc *resty.Client
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new API client
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		rc: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30*time.Second).
			SetHeader("Accept", "application/json"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets a custom timeout for the HTTP client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.rc.SetTimeout(timeout)
	}
}

// WithToken authenticates every request with a bearer token
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.rc.SetAuthToken(token)
	}
}

// WithHTTPClient replaces the underlying HTTP client, keeping base URL and token
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.rc.SetTransport(httpClient.Transport)
		if httpClient.Timeout > 0 {
			c.rc.SetTimeout(httpClient.Timeout)
		}
	}
}

// WithRetries retries failed requests up to count times
func WithRetries(count int, wait time.Duration) ClientOption {
	return func(c *Client) {
		c.rc.SetRetryCount(count).SetRetryWaitTime(wait)
	}
}

// APIError is a non-2xx response of the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
	Field      string `json:"field,omitempty"`
	Index      *int   `json:"index,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Detail)
	if e.Field != "" {
		msg += " [field " + e.Field + "]"
	}
	if e.Index != nil {
		msg += fmt.Sprintf(" [record %d]", *e.Index)
	}
	return msg
}

// Unwrap maps the status back onto the model errors so callers can use
// errors.Is with models.ErrValidation, models.ErrNotFound and
// models.ErrTransport.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return models.ErrValidation
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusExpectationFailed:
		return models.ErrTransport
	}
	return nil
}

// do performs a JSON request and decodes a successful response into result
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}, query map[string]string) error {
	req := c.rc.R().
		SetContext(ctx).
		SetError(&APIError{})

	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		apiErr, ok := resp.Error().(*APIError)
		if !ok || apiErr.Detail == "" {
			apiErr = &APIError{Detail: string(resp.Body())}
		}
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}

	return nil
}
