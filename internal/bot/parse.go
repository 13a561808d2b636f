package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePosition parses a 1-based result position and returns the 0-based
// index. n is the number of results currently shown.
func ParsePosition(args string, n int) (int, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("article number is required")
	}
	pos, err := strconv.Atoi(strings.Fields(s)[0])
	if err != nil {
		return 0, fmt.Errorf("invalid article number %q", s)
	}
	if n == 0 {
		return 0, fmt.Errorf("no articles in the current list")
	}
	if pos < 1 || pos > n {
		return 0, fmt.Errorf("article number must be between 1 and %d", n)
	}
	return pos - 1, nil
}

// ParseIDArg extracts a numeric ID from a command argument string.
func ParseIDArg(args string) (int64, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("notification ID is required")
	}
	id, err := strconv.ParseInt(strings.Fields(s)[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid notification ID %q", s)
	}
	return id, nil
}
