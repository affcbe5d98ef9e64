package cli

import (
	"errors"
	"fmt"
	"io"
)

// Exit codes let scripts tell rejected game moves apart from broken requests
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInvalid     = 2
	ExitNotFound    = 3
	ExitConflict    = 4
	ExitNotYourTurn = 5
	ExitAuth        = 6
	ExitRateLimited = 7
)

// API error codes returned by the server
const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeValidation     = "VALIDATION_ERROR"
	codeUnauthorized   = "UNAUTHORIZED"
	codePlayerExists   = "PLAYER_EXISTS"
	codePlayerNotFound = "PLAYER_NOT_FOUND"
	codeGameInProgress = "GAME_IN_PROGRESS"
	codeGameNotStarted = "GAME_NOT_STARTED"
	codeNotYourTurn    = "NOT_YOUR_TURN"
	codeNoPlayers      = "NO_PLAYERS"
	codeRateLimited    = "RATE_LIMITED"
)

// ExitCode maps an error returned by a command to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return ExitFailure
	}

	switch apiErr.Code {
	case codeInvalidRequest, codeValidation:
		return ExitInvalid
	case codePlayerNotFound:
		return ExitNotFound
	case codePlayerExists, codeGameInProgress, codeGameNotStarted, codeNoPlayers:
		return ExitConflict
	case codeNotYourTurn:
		return ExitNotYourTurn
	case codeUnauthorized:
		return ExitAuth
	case codeRateLimited:
		return ExitRateLimited
	default:
		return ExitFailure
	}
}

// hint suggests the command that gets the user unstuck, if there is one
func hint(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return ""
	}

	switch apiErr.Code {
	case codeNotYourTurn:
		return "run 'scorectl game status' to see who is up, or omit --player to score the current player"
	case codeGameInProgress:
		return "players can only be added or removed between games; run 'scorectl game end' first"
	case codeGameNotStarted:
		return "run 'scorectl game start' first"
	case codeNoPlayers:
		return "add a player with 'scorectl players add <name>'"
	case codeUnauthorized:
		return "the saved token is not valid for this server; run 'scorectl session new'"
	case codeRateLimited:
		return "the server is rate limiting this owner; try again shortly"
	default:
		return ""
	}
}

// reportError prints a command failure the way Execute shows it to users
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	if h := hint(err); h != "" {
		fmt.Fprintln(w, "Hint:", h)
	}
}
