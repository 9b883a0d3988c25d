// Package api provides an HTTP client for the DeviantArt API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scottbw/dvnt/internal/auth"
	"github.com/scottbw/dvnt/internal/config"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/version"
)

// Client is an HTTP client for the DeviantArt API. Requests are never
// retried automatically: fetch positions survive failures and mutations
// must not be replayed, so retrying is left to the caller.
type Client struct {
	httpClient *http.Client
	auth       *auth.Manager
	cfg        *config.Config
	logger     *slog.Logger
}

// Response wraps an API response.
type Response struct {
	Data       json.RawMessage
	StatusCode int
	Headers    http.Header
}

// UnmarshalData unmarshals the response data into the given value.
func (r *Response) UnmarshalData(v any) error {
	return json.Unmarshal(r.Data, v)
}

// NewClient creates a new API client.
func NewClient(cfg *config.Config, authMgr *auth.Manager) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		auth: authMgr,
		cfg:  cfg,
	}
}

// SetLogger installs a logger for per-request debug traces.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Get performs a GET request with the given query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.doRequest(ctx, "GET", path, query, nil)
}

// PostForm performs a form-encoded POST request. Most mutating
// endpoints of the API take form bodies; a few take query parameters
// instead, so both are accepted.
func (c *Client) PostForm(ctx context.Context, path string, query, data url.Values) (*Response, error) {
	return c.doRequest(ctx, "POST", path, query, data)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, "DELETE", path, nil, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, form url.Values) (*Response, error) {
	if err := c.auth.EnsureFresh(ctx); err != nil {
		return nil, err
	}
	token, err := c.auth.AccessToken()
	if err != nil {
		return nil, err
	}

	reqURL := c.buildURL(path, query)

	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("request failed", "method", method, "url", reqURL, "error", err)
		}
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debug("request",
			"method", method,
			"url", reqURL,
			"status", resp.StatusCode,
			"duration", time.Since(start).Round(time.Millisecond))
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		return &Response{
			Data:       respBody,
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
		}, nil

	case http.StatusTooManyRequests: // 429
		return nil, output.ErrRateLimit(parseRetryAfter(resp.Header.Get("Retry-After")))

	case http.StatusUnauthorized: // 401
		return nil, output.ErrAuth("Authentication failed")

	case http.StatusForbidden: // 403
		return nil, output.ErrForbidden(apiErrorMessage(resp.Body, "Access denied"))

	case http.StatusNotFound: // 404
		return nil, output.ErrNotFound("Resource", path)

	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout: // 502, 503, 504
		return nil, &output.Error{
			Code:       output.CodeAPI,
			Message:    fmt.Sprintf("Gateway error (%d)", resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			Retryable:  true,
		}

	default:
		return nil, output.ErrAPI(resp.StatusCode,
			apiErrorMessage(resp.Body, fmt.Sprintf("Request failed (HTTP %d)", resp.StatusCode)))
	}
}

// apiErrorMessage extracts the API's error_description from a failed
// response body, falling back to the given default.
func apiErrorMessage(body io.Reader, fallback string) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return fallback
	}
	var apiErr struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(data, &apiErr) == nil {
		if apiErr.ErrorDescription != "" {
			return apiErr.ErrorDescription
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}
	return fallback
}

func (c *Client) buildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	base := config.NormalizeBaseURL(c.cfg.BaseURL) + path
	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// parseRetryAfter parses the Retry-After header value.
func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return seconds
	}
	return 0
}
