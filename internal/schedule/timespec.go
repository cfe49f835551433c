package schedule

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	layoutAbsolute  = "2006-01-02 15:04"
	layoutAbsoluteT = "2006-01-02T15:04"
)

var (
	absolutePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ Tt]\d{2}:\d{2}`)
	relativePattern = regexp.MustCompile(`^(?:in\s+)?(\d+)\s*(m|mins?|minutes?|h|hrs?|hours?|d|days?|w|weeks?)$`)
)

// Resolve parses a one-shot time expression relative to now and returns
// the instant it names. Forms are tried in a fixed order and the first
// structural match wins:
//
//  1. absolute: "2025-12-25 10:00" (also "2025-12-25T10:00" and RFC 3339)
//  2. relative: "30m", "2h", "1d", "1w", "in 45 minutes"
//  3. natural:  "today 18:30", "tomorrow 9am", "next monday 14:00"
//
// Wall-clock forms are interpreted in now's location. The result must be
// strictly after now; anything else is a *ParseError.
func Resolve(input string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return time.Time{}, parseErrorf(input, "empty time expression")
	}
	lowered := strings.ToLower(strings.Join(strings.Fields(trimmed), " "))

	resolvers := []func() (time.Time, bool, error){
		func() (time.Time, bool, error) { return resolveAbsolute(trimmed, now.Location()) },
		func() (time.Time, bool, error) { return resolveRelative(lowered, now) },
		func() (time.Time, bool, error) { return resolveNatural(lowered, now) },
	}

	for _, resolve := range resolvers {
		t, matched, err := resolve()
		if !matched {
			continue
		}
		if err != nil {
			return time.Time{}, &ParseError{Input: input, Reason: err.Error()}
		}
		if !t.After(now) {
			return time.Time{}, parseErrorf(input, "%s is not in the future", t.Format(layoutAbsolute))
		}
		return t, nil
	}

	return time.Time{}, parseErrorf(input, "unrecognized time format")
}

func resolveAbsolute(input string, loc *time.Location) (time.Time, bool, error) {
	if !absolutePattern.MatchString(input) {
		return time.Time{}, false, nil
	}

	if input[10] == ' ' {
		t, err := time.ParseInLocation(layoutAbsolute, input, loc)
		if err != nil {
			return time.Time{}, true, fmt.Errorf("invalid date or time (want YYYY-MM-DD HH:MM)")
		}
		return t, true, nil
	}

	upper := strings.ToUpper(input)
	if len(upper) == len(layoutAbsoluteT) {
		t, err := time.ParseInLocation(layoutAbsoluteT, upper, loc)
		if err != nil {
			return time.Time{}, true, fmt.Errorf("invalid date or time (want YYYY-MM-DDTHH:MM)")
		}
		return t, true, nil
	}

	t, err := time.Parse(time.RFC3339, upper)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("invalid RFC 3339 timestamp")
	}
	return t.In(loc), true, nil
}

func resolveRelative(input string, now time.Time) (time.Time, bool, error) {
	m := relativePattern.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, false, nil
	}

	unit := relativeUnit(m[2])
	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || amount > math.MaxInt64/int64(unit) {
		return time.Time{}, true, fmt.Errorf("offset %s%s is too large", m[1], m[2])
	}
	return now.Add(time.Duration(amount) * unit), true, nil
}

func relativeUnit(unit string) time.Duration {
	switch unit[0] {
	case 'm':
		return time.Minute
	case 'h':
		return time.Hour
	case 'd':
		return 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// resolveNatural handles "<anchor> [at] [clock]" where anchor is today,
// tomorrow, next <weekday>, this <weekday> or a bare weekday.
func resolveNatural(input string, now time.Time) (time.Time, bool, error) {
	tokens := strings.Fields(input)
	if len(tokens) == 0 {
		return time.Time{}, false, nil
	}

	var days, consumed int
	switch tokens[0] {
	case "today":
		days, consumed = 0, 1
	case "tomorrow":
		days, consumed = 1, 1
	case "next", "this":
		if len(tokens) < 2 {
			return time.Time{}, false, nil
		}
		weekday, ok := weekdayNames[tokens[1]]
		if !ok {
			return time.Time{}, true, fmt.Errorf("unknown weekday %q", tokens[1])
		}
		days, consumed = daysUntil(now.Weekday(), weekday, tokens[0] == "next"), 2
	default:
		weekday, ok := weekdayNames[tokens[0]]
		if !ok {
			return time.Time{}, false, nil
		}
		days, consumed = daysUntil(now.Weekday(), weekday, true), 1
	}

	rest := tokens[consumed:]
	if len(rest) > 0 && rest[0] == "at" {
		if len(rest) == 1 {
			return time.Time{}, true, fmt.Errorf("missing time of day after \"at\"")
		}
		rest = rest[1:]
	}

	hour, minute := defaultHour, defaultMinute
	if len(rest) > 0 {
		var err error
		hour, minute, err = parseClock(strings.Join(rest, " "))
		if err != nil {
			return time.Time{}, true, err
		}
	}

	year, month, day := now.Date()
	return time.Date(year, month, day+days, hour, minute, 0, 0, now.Location()), true, nil
}

// daysUntil counts days from one weekday forward to another. When strict
// is set the same weekday counts as a full week ahead rather than today.
func daysUntil(from, to time.Weekday, strict bool) int {
	ahead := (int(to) - int(from) + 7) % 7
	if strict && ahead == 0 {
		ahead = 7
	}
	return ahead
}
