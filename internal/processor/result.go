package processor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnparsableResult marks a sub-match result that names no winner.
var ErrUnparsableResult = errors.New("unparsable result")

// ParseResult reads a "H:A" leg score and reports whether the home side won.
// Both sides must be non-negative integers and differ, games without a
// winner cannot be rated.
func ParseResult(result string) (homeWins bool, err error) {
	home, away, ok := strings.Cut(strings.TrimSpace(result), ":")
	if !ok {
		return false, fmt.Errorf("%w: %q has no separator", ErrUnparsableResult, result)
	}
	h, err := strconv.Atoi(strings.TrimSpace(home))
	if err != nil || h < 0 {
		return false, fmt.Errorf("%w: %q", ErrUnparsableResult, result)
	}
	a, err := strconv.Atoi(strings.TrimSpace(away))
	if err != nil || a < 0 {
		return false, fmt.Errorf("%w: %q", ErrUnparsableResult, result)
	}
	if h == a {
		return false, fmt.Errorf("%w: %q is a draw", ErrUnparsableResult, result)
	}
	return h > a, nil
}
