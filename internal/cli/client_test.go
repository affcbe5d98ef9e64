package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rateLimitedServer answers 429 for the first limited requests, then 200
func rateLimitedServer(t *testing.T, limited int32, retryAfter string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get(ownerTokenHeader))
		if calls.Add(1) <= limited {
			w.Header().Set("Retry-After", retryAfter)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = fmt.Fprint(w, `{"error":{"code":"RATE_LIMITED","message":"Too many requests"}}`)
			return
		}
		_, _ = fmt.Fprint(w, `{"status":"ok","owners":1,"players":2}`)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestRateLimitedRequestsAreRetried(t *testing.T) {
	server, calls := rateLimitedServer(t, 2, "1")

	c := NewClient(server.URL+"/", "secret", 3)
	var waits []time.Duration
	c.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	var result HealthResult
	require.NoError(t, c.Get(context.Background(), "/api/v1/health", &result))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, 2, result.Players)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, waits)
}

func TestRateLimitRetriesRunOut(t *testing.T) {
	server, calls := rateLimitedServer(t, 10, "30")

	c := NewClient(server.URL, "secret", 1)
	var waits []time.Duration
	c.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	err := c.Get(context.Background(), "/api/v1/health", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, codeRateLimited, apiErr.Code)
	assert.Equal(t, ExitRateLimited, ExitCode(err))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []time.Duration{maxRetryWait}, waits)
}

func TestRetryStopsWhenContextEnds(t *testing.T) {
	server, calls := rateLimitedServer(t, 10, "1")

	c := NewClient(server.URL, "secret", 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.wait = sleep

	err := c.Do(ctx, http.MethodGet, "/api/v1/health", nil, nil)
	require.Error(t, err)
	assert.LessOrEqual(t, calls.Load(), int32(1))
}

func TestNonJSONErrorsKeepStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	err := NewClient(server.URL, "", 0).Get(context.Background(), "/", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		err      error
		expected int
		hint     bool
	}{
		{nil, ExitOK, false},
		{errors.New("connection refused"), ExitFailure, false},
		{&APIError{Code: codeValidation}, ExitInvalid, false},
		{&APIError{Code: codeInvalidRequest}, ExitInvalid, false},
		{&APIError{Code: codePlayerNotFound}, ExitNotFound, false},
		{&APIError{Code: codePlayerExists}, ExitConflict, false},
		{&APIError{Code: codeGameInProgress}, ExitConflict, true},
		{&APIError{Code: codeGameNotStarted}, ExitConflict, true},
		{&APIError{Code: codeNoPlayers}, ExitConflict, true},
		{fmt.Errorf("turn: %w", &APIError{Code: codeNotYourTurn}), ExitNotYourTurn, true},
		{&APIError{Code: codeUnauthorized}, ExitAuth, true},
		{&APIError{Code: codeRateLimited}, ExitRateLimited, true},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
			assert.Equal(t, tt.hint, hint(tt.err) != "")
		})
	}
}

func TestTokenFileIsKeyedByServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")

	a := &Config{ServerURL: "http://a.example/", TokenFile: path}
	require.NoError(t, a.SaveToken("token-a"))
	b := &Config{ServerURL: "http://b.example", TokenFile: path}
	require.NoError(t, b.SaveToken("token-b"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := &Config{ServerURL: "http://a.example", TokenFile: path}
	require.NoError(t, loaded.LoadToken())
	assert.Equal(t, "token-a", loaded.Token)

	other := &Config{ServerURL: "http://c.example", TokenFile: path}
	require.NoError(t, other.LoadToken())
	assert.Empty(t, other.Token)

	explicit := &Config{ServerURL: "http://a.example", TokenFile: path, Token: "given"}
	require.NoError(t, explicit.LoadToken())
	assert.Equal(t, "given", explicit.Token)
}

func TestBareTokenFileStillLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  old-token\n"), 0600))

	cfg := &Config{ServerURL: "http://any.example", TokenFile: path}
	require.NoError(t, cfg.LoadToken())
	assert.Equal(t, "old-token", cfg.Token)

	// Saving upgrades the file to the per-server form
	require.NoError(t, cfg.SaveToken("new-token"))
	reloaded := &Config{ServerURL: "http://any.example", TokenFile: path}
	require.NoError(t, reloaded.LoadToken())
	assert.Equal(t, "new-token", reloaded.Token)
}
