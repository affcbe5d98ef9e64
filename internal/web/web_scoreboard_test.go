package web_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/clock"
)

func TestFirstVisitIssuesOwner(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.True(t, ts.cookies.hasOwner(), "Expected owner cookie to be set")

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#players", "No players yet.")
	assertContainsElement(t, doc, "form#add-player")
	assertContainsText(t, doc, "#game-status", "No game in progress.")
}

func TestOwnerCookieIsReused(t *testing.T) {
	ts := newWebTestServer(t)
	ts.get("/")
	first := ts.cookies.cookies["owner"].Value

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, first, ts.cookies.cookies["owner"].Value)
}

func TestOwnerCookieExpirySlidesWithActivity(t *testing.T) {
	ts := newWebTestServer(t)
	ts.get("/")
	first := ts.cookies.cookies["owner"].Value
	ts.addPlayer("Ann")

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)

	var refreshed *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "owner" {
			refreshed = c
		}
	}
	require.NotNil(t, refreshed, "Expected a known owner's cookie to be re-sent")
	assert.Equal(t, first, refreshed.Value)
	assert.Equal(t, int(clock.DefaultTTL.Seconds()), refreshed.MaxAge)

	doc := parseHTML(rr.Body)
	assert.Equal(t, 1, playerRow(doc, "Ann").Length())
}

func TestAddPlayer(t *testing.T) {
	ts := newWebTestServer(t)

	doc := ts.postAndFollow("/players", url.Values{"name": {"  Ann  "}})
	assertContainsText(t, doc, ".flash-success", "Added player: Ann")
	row := playerRow(doc, "Ann")
	require.Equal(t, 1, row.Length())
	assert.Equal(t, "0", row.Find("td.score").Text())

	doc = ts.postAndFollow("/players", url.Values{"name": {"Ben"}, "score": {"12"}})
	assert.Equal(t, "12", playerRow(doc, "Ben").Find("td.score").Text())
}

func TestAddPlayerErrors(t *testing.T) {
	ts := newWebTestServer(t)
	ts.addPlayer("Ann")

	doc := ts.postAndFollow("/players", url.Values{"name": {"   "}})
	assertContainsText(t, doc, ".flash-error", "Player name cannot be empty.")

	doc = ts.postAndFollow("/players", url.Values{"name": {"Ann"}})
	assertContainsText(t, doc, ".flash-error", "That player already exists.")

	doc = ts.postAndFollow("/players", url.Values{"name": {"Ben"}, "score": {"1.5"}})
	assertContainsText(t, doc, ".flash-error", "Starting score must be a whole number.")
	assert.Equal(t, 0, playerRow(doc, "Ben").Length())
}

func TestFlashShownOnce(t *testing.T) {
	ts := newWebTestServer(t)
	ts.addPlayer("Ann")

	doc := parseHTML(ts.get("/").Body)
	assertNotContainsElement(t, doc, ".flash")
}

func TestFlashKeepsNonASCIINames(t *testing.T) {
	ts := newWebTestServer(t)

	doc := ts.postAndFollow("/players", url.Values{"name": {"Zoë; \"the <b>\""}})
	assertContainsText(t, doc, ".flash-success", "Added player: Zoë; \"the <b>\"")
	assertNotContainsElement(t, doc, "td.name b")
}

func TestUpdateScore(t *testing.T) {
	ts := newWebTestServer(t)
	id := ts.addPlayer("Ann")

	doc := ts.postAndFollow("/players/"+id+"/update", url.Values{"delta": {" 5 "}})
	assertContainsText(t, doc, ".flash-success", "Updated Ann by +5 points.")
	assert.Equal(t, "5", playerRow(doc, "Ann").Find("td.score").Text())

	doc = ts.postAndFollow("/players/"+id+"/update", url.Values{"delta": {"-8"}})
	assertContainsText(t, doc, ".flash-success", "Updated Ann by -8 points.")
	assert.Equal(t, "-3", playerRow(doc, "Ann").Find("td.score").Text())

	// Missing delta means no change
	doc = ts.postAndFollow("/players/"+id+"/update", url.Values{})
	assertContainsText(t, doc, ".flash-success", "Updated Ann by +0 points.")
}

func TestUpdateScoreErrors(t *testing.T) {
	ts := newWebTestServer(t)
	id := ts.addPlayer("Ann")

	doc := ts.postAndFollow("/players/"+id+"/update", url.Values{"delta": {"abc"}})
	assertContainsText(t, doc, ".flash-error", "Score change must be a whole number.")
	assert.Equal(t, "0", playerRow(doc, "Ann").Find("td.score").Text())

	doc = ts.postAndFollow("/players/999999/update", url.Values{"delta": {"1"}})
	assertContainsText(t, doc, ".flash-error", "Player not found.")

	doc = ts.postAndFollow("/players/not-a-number/update", url.Values{"delta": {"1"}})
	assertContainsText(t, doc, ".flash-error", "Player not found.")
}

func TestDeletePlayer(t *testing.T) {
	ts := newWebTestServer(t)
	id := ts.addPlayer("Ann")
	ts.addPlayer("Ben")

	doc := ts.postAndFollow("/players/"+id+"/delete", nil)
	assertContainsText(t, doc, ".flash-success", "Removed Ann.")
	assert.Equal(t, 0, playerRow(doc, "Ann").Length())
	assert.Equal(t, 1, playerRow(doc, "Ben").Length())

	doc = ts.postAndFollow("/players/"+id+"/delete", nil)
	assertContainsText(t, doc, ".flash-error", "Player not found.")
}

func TestResetScores(t *testing.T) {
	ts := newWebTestServer(t)
	id := ts.addPlayer("Ann")
	ts.postAndFollow("/players/"+id+"/update", url.Values{"delta": {"40"}})

	doc := ts.postAndFollow("/reset", nil)
	assertContainsText(t, doc, ".flash-success", "All scores reset to 0.")
	assert.Equal(t, "0", playerRow(doc, "Ann").Find("td.score").Text())
}

func TestLeaderboardOrder(t *testing.T) {
	ts := newWebTestServer(t)
	ts.addPlayer("Cy")
	ben := ts.addPlayer("Ben")
	ts.addPlayer("Ann")
	ts.postAndFollow("/players/"+ben+"/update", url.Values{"delta": {"3"}})

	doc := parseHTML(ts.get("/").Body)

	var turnOrder, leaderboard []string
	doc.Find("tr.player td.name").Each(func(_ int, s *goquery.Selection) {
		turnOrder = append(turnOrder, s.Text())
	})
	doc.Find("#leaderboard li .name").Each(func(_ int, s *goquery.Selection) {
		leaderboard = append(leaderboard, s.Text())
	})

	assert.Equal(t, []string{"Cy", "Ben", "Ann"}, turnOrder)
	assert.Equal(t, []string{"Ben", "Ann", "Cy"}, leaderboard)
}

func TestBrowsersHaveSeparateScoreboards(t *testing.T) {
	alice := newWebTestServer(t)
	bob := alice.browser()

	id := alice.addPlayer("Ann")
	bob.addPlayer("Ann")

	// Bob cannot touch Alice's player even knowing its id
	doc := bob.postAndFollow("/players/"+id+"/delete", nil)
	assertContainsText(t, doc, ".flash-error", "Player not found.")

	doc = parseHTML(alice.get("/").Body)
	assert.Equal(t, 1, playerRow(doc, "Ann").Length())
}

func TestTamperedOwnerCookieGetsFreshOwner(t *testing.T) {
	ts := newWebTestServer(t)
	ts.addPlayer("Ann")

	cookie := *ts.cookies.cookies["owner"]
	cookie.Value += "00"
	ts.cookies.cookies["owner"] = &cookie

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEqual(t, cookie.Value, ts.cookies.cookies["owner"].Value)
	assertContainsText(t, parseHTML(rr.Body), "#players", "No players yet.")
}

func TestInactiveOwnerStartsOver(t *testing.T) {
	ts := newWebTestServer(t)
	ts.addPlayer("Ann")

	ts.app.MockClock.Advance(clock.DefaultTTL - time.Second)
	doc := parseHTML(ts.get("/").Body)
	assert.Equal(t, 1, playerRow(doc, "Ann").Length())

	ts.app.MockClock.Advance(clock.DefaultTTL)
	doc = parseHTML(ts.get("/").Body)
	assertContainsText(t, doc, "#players", "No players yet.")
}

func TestHTMXRequestsGetHXRedirect(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.postHTMX("/players", url.Values{"name": {"Ann"}})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("HX-Redirect"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "Added player: Ann")
}
