package ledger

import (
	"strconv"
	"strings"

	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
)

// ParseName trims surrounding whitespace and rejects empty names
func ParseName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", model.NewValidationError("name", "must not be empty")
	}
	return name, nil
}

// ParseScore parses a starting score. Blank input means 0.
func ParseScore(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	return parseWhole("score", trimmed)
}

// ParseDelta parses a score change, which must be a signed whole number
func ParseDelta(raw string) (int64, error) {
	return parseWhole("delta", strings.TrimSpace(raw))
}

func parseWhole(field, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, model.NewValidationError(field, "must be a whole number")
	}
	return n, nil
}
