package agenda

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidClock = errors.New("invalid clock value")

// MinutesToLabel renders a minute-of-day as "HH:MM".
func MinutesToLabel(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseClock accepts "HH:MM" or a bare number of minutes and returns the
// minute-of-day it denotes. 24:00 (1440) is accepted as the end of the day.
func ParseClock(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidClock)
	}

	var mins int
	if h, m, ok := strings.Cut(v, ":"); ok {
		hours, err := strconv.Atoi(h)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, v)
		}
		minutes, err := strconv.Atoi(m)
		if err != nil || len(m) != 2 || minutes < 0 || minutes >= 60 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, v)
		}
		mins = hours*60 + minutes
	} else {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, v)
		}
		mins = n
	}

	if mins < 0 || mins > MinutesPerDay {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidClock, v)
	}
	return mins, nil
}

// DurationLabel renders a length in minutes as 45m, 2h or 1h30.
func DurationLabel(m int) string {
	switch {
	case m < 60:
		return fmt.Sprintf("%dm", m)
	case m%60 == 0:
		return fmt.Sprintf("%dh", m/60)
	default:
		return fmt.Sprintf("%dh%02d", m/60, m%60)
	}
}
