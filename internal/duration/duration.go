// Package duration parses human-friendly duration strings of the kind used in
// auth configuration ("15m", "7d", "2w"). Go's time.ParseDuration stops at
// hours, but token lifetimes are usually written in days or weeks, so the
// original configuration format is kept wire-compatible here.
package duration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for empty, negative, or unparseable input.
var ErrInvalidDuration = errors.New("invalid duration")

var unitSuffixes = []struct {
	suffix string
	unit   time.Duration
}{
	{"ms", time.Millisecond},
	{"s", time.Second},
	{"m", time.Minute},
	{"h", time.Hour},
	{"d", 24 * time.Hour},
	{"w", 7 * 24 * time.Hour},
}

// Parse converts a duration string like "30s", "15m", "12h", "7d", or "2w"
// into a time.Duration. A bare number is treated as milliseconds. Compound
// expressions ("1h30m") are delegated to time.ParseDuration.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		return time.Duration(n) * time.Millisecond, nil
	}

	for _, u := range unitSuffixes {
		num, ok := strings.CutSuffix(s, u.suffix)
		if !ok {
			continue
		}
		// "1h30m" ends in "m" but its prefix is not a plain number;
		// fall through to time.ParseDuration below.
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			break
		}
		if v < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		return time.Duration(v * float64(u.unit)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return d, nil
}

// Seconds parses s and returns the result truncated to whole seconds, the
// granularity the session store's TTL commands operate at.
func Seconds(s string) (int64, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return int64(d / time.Second), nil
}
