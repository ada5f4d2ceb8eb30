package moderation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationTokenRE = regexp.MustCompile(`^(\d+)(day|hour|minute)$`)

// ParseDurationToken parses ban duration tokens of the form
// "<integer><unit>", unit being exactly one of day, hour or minute,
// e.g. "7day", "5hour", "30minute". Anything else is ErrBadDuration.
func ParseDurationToken(token string) (time.Duration, error) {
	m := durationTokenRE.FindStringSubmatch(strings.ToLower(strings.TrimSpace(token)))
	if m == nil {
		return 0, ErrBadDuration
	}

	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, ErrBadDuration
	}

	var unit time.Duration
	switch m[2] {
	case "day":
		unit = 24 * time.Hour
	case "hour":
		unit = time.Hour
	case "minute":
		unit = time.Minute
	}

	d := time.Duration(amount) * unit
	if amount != 0 && d/unit != time.Duration(amount) {
		return 0, ErrBadDuration
	}
	return d, nil
}

func humanDuration(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%d days", d/(24*time.Hour))
	}
	return d.String()
}
