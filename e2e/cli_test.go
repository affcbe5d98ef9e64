package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ev-1233/Blackjac-chip-counter/internal/api"
	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/clock"
	"github.com/ev-1233/Blackjac-chip-counter/internal/factory"
	"github.com/ev-1233/Blackjac-chip-counter/internal/storage/sqlite"
	"github.com/ev-1233/Blackjac-chip-counter/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "scorectl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/scorectl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application backed by a throwaway SQLite file
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	sqliteCfg := sqlite.DefaultConfig()
	sqliteCfg.Path = filepath.Join(t.TempDir(), "scores.db")
	app, err := factory.New(context.Background(), factory.Config{
		Logger:       logger,
		StorageType:  factory.StorageTypeSQLite,
		SQLiteConfig: &sqliteCfg,
	})
	require.NoError(t, err)

	// Create routers
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Storage:        app.Storage,
		Identity:       app.Identity,
		GameController: app.GameController,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		Identity:       app.Identity,
		GameController: app.GameController,
		CookieMaxAge:   clock.DefaultTTL,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type sessionResponse struct {
	OwnerID string `json:"owner_id"`
	Token   string `json:"token"`
}

type playerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

type scoreboardResponse struct {
	Status        string           `json:"status"`
	TurnOrder     []playerResponse `json:"turn_order"`
	Leaderboard   []playerResponse `json:"leaderboard"`
	CurrentPlayer *playerResponse  `json:"current_player"`
}

type turnResponse struct {
	Acting playerResponse  `json:"acting"`
	Next   *playerResponse `json:"next"`
	Delta  int64           `json:"delta"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Owners  int    `json:"owners"`
	Players int    `json:"players"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_SessionCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("session", "new")
	require.NoError(t, err, "output: %s", output)

	var session sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	assert.NotEmpty(t, session.Token)

	// Token should be saved in token file
	output, err = cli.run("whoami")
	require.NoError(t, err, "output: %s", output)

	var me sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, session.OwnerID, me.OwnerID)

	// An explicit token wins over the file
	other := newCLIRunner(t, ts.addr)
	output, err = other.runWithToken(session.Token, "whoami")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, session.OwnerID, me.OwnerID)
}

func TestCLI_OwnersAreIsolated(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli1 := newCLIRunner(t, ts.addr)
	cli2 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token2"),
	}

	output, err := cli1.run("players", "add", "Alice")
	require.NoError(t, err, "output: %s", output)

	// Same name is fine for another owner
	output, err = cli2.run("players", "add", "Alice")
	require.NoError(t, err, "output: %s", output)

	output, err = cli1.run("players", "add", "Alice")
	require.Error(t, err)
	assert.Contains(t, output, "PLAYER_EXISTS")

	output, err = cli2.run("game", "status")
	require.NoError(t, err, "output: %s", output)
	var board scoreboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Len(t, board.TurnOrder, 1)

	output, err = cli1.run("health")
	require.NoError(t, err, "output: %s", output)
	var health healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &health))
	assert.Equal(t, 2, health.Owners)
	assert.Equal(t, 2, health.Players)
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	var players []playerResponse
	for _, name := range []string{"Alice", "Bob", "Cara"} {
		output, err := cli.run("players", "add", name)
		require.NoError(t, err, "output: %s", output)
		var p playerResponse
		require.NoError(t, json.Unmarshal([]byte(output), &p))
		players = append(players, p)
	}

	output, err := cli.run("game", "start")
	require.NoError(t, err, "output: %s", output)
	var board scoreboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Equal(t, "in_progress", board.Status)
	require.NotNil(t, board.CurrentPlayer)
	assert.Equal(t, "Alice", board.CurrentPlayer.Name)

	// Removing a player mid-game is rejected
	output, err = cli.run("players", "remove", fmt.Sprint(players[1].ID))
	require.Error(t, err)
	assert.Contains(t, output, "GAME_IN_PROGRESS")

	// Three turns come back around to Alice
	deltas := []string{"25", "-5", "10"}
	for i, delta := range deltas {
		output, err = cli.run("game", "turn", "--delta", delta)
		require.NoError(t, err, "output: %s", output)

		var turn turnResponse
		require.NoError(t, json.Unmarshal([]byte(output), &turn))
		assert.Equal(t, players[i].Name, turn.Acting.Name)
		require.NotNil(t, turn.Next)
		assert.Equal(t, players[(i+1)%len(players)].Name, turn.Next.Name)
	}

	output, err = cli.run("game", "status")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Equal(t, "Alice", board.Leaderboard[0].Name)
	assert.Equal(t, "Alice", board.CurrentPlayer.Name)

	// Reset keeps the game going
	output, err = cli.run("reset")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Equal(t, "in_progress", board.Status)
	for _, p := range board.TurnOrder {
		assert.Zero(t, p.Score)
	}

	output, err = cli.run("game", "end")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	assert.Equal(t, "not_started", board.Status)

	output, err = cli.run("players", "remove", fmt.Sprint(players[1].ID))
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Removed Bob.", msg.Message)
}

func TestWeb_ServesScoreboardPage(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	resp, err := http.Get(ts.addr + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))

	var found bool
	for _, c := range resp.Cookies() {
		found = found || c.Name == "owner"
	}
	assert.True(t, found, "expected owner cookie")
}
