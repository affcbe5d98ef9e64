package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	ownerTokenHeader = "X-Owner-Token"

	// maxRetryWait caps how long a single Retry-After is honoured
	maxRetryWait = 10 * time.Second
)

// Client talks to the scoreboard JSON API as a single owner
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	// maxRetries is how many times a rate-limited request is repeated
	maxRetries int
	wait       func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new API client
func NewClient(baseURL, token string, maxRetries int) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		wait:       sleep,
	}
}

// SetToken switches the owner the client acts as
func (c *Client) SetToken(token string) {
	c.token = token
}

// HasToken reports whether the client will authenticate as an owner
func (c *Client) HasToken() bool {
	return c.token != ""
}

// APIError is an error response from the API. Code is the machine-readable
// error code, for example NOT_YOUR_TURN or GAME_IN_PROGRESS.
type APIError struct {
	Status     int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// Do sends a request and decodes the JSON response into result.
// Rate-limited requests are repeated after the server's Retry-After delay.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = data
	}

	for attempt := 0; ; attempt++ {
		err := c.do(ctx, method, path, payload, result)

		apiErr, limited := err.(*APIError)
		if !limited || apiErr.Status != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return err
		}
		if werr := c.wait(ctx, apiErr.RetryAfter); werr != nil {
			return err
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, result any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(ownerTokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response, body []byte) *APIError {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Code == "" {
		errResp.Error = APIError{
			Code:    http.StatusText(resp.StatusCode),
			Message: strings.TrimSpace(string(body)),
		}
	}

	apiErr := errResp.Error
	apiErr.Status = resp.StatusCode
	apiErr.RetryAfter = retryAfter(resp.Header.Get("Retry-After"))
	return &apiErr
}

// retryAfter reads a delay in whole seconds, defaulting to one second
func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return time.Second
	}
	return min(time.Duration(seconds)*time.Second, maxRetryWait)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, result)
}
