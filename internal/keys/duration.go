package keys

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for non-numeric, negative or otherwise
// malformed duration tokens.
var ErrInvalidDuration = errors.New("invalid duration")

// ParseDuration parses an interval token. Accepted forms are "<n>ms",
// "<n>s", "<n>m" (case-insensitive) and a bare integer meaning
// milliseconds. Surrounding whitespace is tolerated.
func ParseDuration(s string) (time.Duration, error) {
	tok := strings.ToLower(strings.TrimSpace(s))
	if tok == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidDuration)
	}

	unit := time.Millisecond
	switch {
	case strings.HasSuffix(tok, "ms"):
		tok = strings.TrimSuffix(tok, "ms")
	case strings.HasSuffix(tok, "s"):
		tok = strings.TrimSuffix(tok, "s")
		unit = time.Second
	case strings.HasSuffix(tok, "m"):
		tok = strings.TrimSuffix(tok, "m")
		unit = time.Minute
	}

	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative value %q", ErrInvalidDuration, s)
	}
	return time.Duration(n) * unit, nil
}

// FormatDuration renders a duration in the canonical millisecond form used
// when saving configuration files.
func FormatDuration(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
