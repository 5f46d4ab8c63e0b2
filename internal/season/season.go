// Package season maps dates and upstream game-type codes to the season labels
// and game-type codes used as aggregate keys.
package season

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the YYYY-MM-DD form used on every date the system handles.
const DateLayout = "2006-01-02"

// Game-type codes stored on games and season aggregates.
const (
	PreSeason     = "PR"
	RegularSeason = "R"
	Playoffs      = "P"
)

// seasonStartMonth is the first month counted toward a new season.
const seasonStartMonth = time.July

// FromDate returns the season label for a date, e.g. 2025-10-09 -> "20252026"
// and 2026-03-01 -> "20252026".
func FromDate(date string) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	start := d.Year()
	if d.Month() < seasonStartMonth {
		start--
	}
	return fmt.Sprintf("%d%d", start, start+1), nil
}

// ParseDate validates a YYYY-MM-DD date.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
	}
	return d, nil
}

// GameTypeCode normalizes the upstream gameType value. The web API sends
// 1, 2, 3; older payloads sent the letter codes directly.
func GameTypeCode(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "1", PreSeason:
		return PreSeason
	case "2", RegularSeason:
		return RegularSeason
	case "3", Playoffs:
		return Playoffs
	default:
		return strings.ToUpper(strings.TrimSpace(raw))
	}
}

// IsPreSeason reports whether code is the pre-season game type.
func IsPreSeason(code string) bool {
	return GameTypeCode(code) == PreSeason
}
