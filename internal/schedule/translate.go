package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// recurrence is one natural-language template: a fully anchored pattern
// and the builder that turns its submatches into a cron expression.
type recurrence struct {
	name    string
	pattern *regexp.Regexp
	build   func(match []string) (string, error)
}

const (
	atClock     = `(?: at (.+))?`
	weekdayWord = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun)`
)

// recurrences is tried top to bottom and the first pattern that matches
// wins. Patterns are anchored, so at most one is expected to match; the
// order only matters if a future template overlaps an existing one.
var recurrences = []recurrence{
	{
		name:    "every second",
		pattern: regexp.MustCompile(`^every second$`),
		build:   fixed("* * * * * *"),
	},
	{
		name:    "every N seconds",
		pattern: regexp.MustCompile(`^every (\d+) seconds?$`),
		build:   stride("*/%d * * * * *", 59),
	},
	{
		name:    "every minute",
		pattern: regexp.MustCompile(`^every minute$`),
		build:   fixed("0 * * * * *"),
	},
	{
		name:    "every N minutes",
		pattern: regexp.MustCompile(`^every (\d+) minutes?$`),
		build:   stride("0 */%d * * * *", 59),
	},
	{
		name:    "every hour",
		pattern: regexp.MustCompile(`^(?:every hour|hourly)$`),
		build:   fixed("0 0 * * * *"),
	},
	{
		name:    "every N hours",
		pattern: regexp.MustCompile(`^every (\d+) hours?$`),
		build:   stride("0 0 */%d * * *", 23),
	},
	{
		name:    "every day",
		pattern: regexp.MustCompile(`^(?:every day|daily)` + atClock + `$`),
		build: func(m []string) (string, error) {
			return atTime(m[1], "* * *")
		},
	},
	{
		name:    "every N days",
		pattern: regexp.MustCompile(`^every (\d+) days?` + atClock + `$`),
		build: func(m []string) (string, error) {
			n, err := strideValue(m[1], 31)
			if err != nil {
				return "", err
			}
			return atTime(m[2], fmt.Sprintf("*/%d * *", n))
		},
	},
	{
		name:    "every weekday",
		pattern: regexp.MustCompile(`^every weekday` + atClock + `$`),
		build: func(m []string) (string, error) {
			return atTime(m[1], "* * MON-FRI")
		},
	},
	{
		name:    "every weekend",
		pattern: regexp.MustCompile(`^every weekend(?: day)?` + atClock + `$`),
		build: func(m []string) (string, error) {
			return atTime(m[1], "* * SAT,SUN")
		},
	},
	{
		name:    "every <weekday>",
		pattern: regexp.MustCompile(`^every ` + weekdayWord + atClock + `$`),
		build: func(m []string) (string, error) {
			weekday := weekdayNames[m[1]]
			abbreviation := strings.ToUpper(weekday.String()[:3])
			return atTime(m[2], "* * "+abbreviation)
		},
	},
	{
		name:    "every month",
		pattern: regexp.MustCompile(`^(?:every month|monthly)(?: on the (\d{1,2})(?:st|nd|rd|th)?)?` + atClock + `$`),
		build: func(m []string) (string, error) {
			day := 1
			if m[1] != "" {
				day, _ = strconv.Atoi(m[1])
				if day < 1 || day > 31 {
					return "", fmt.Errorf("day of month %d out of range", day)
				}
			}
			return atTime(m[2], fmt.Sprintf("%d * *", day))
		},
	},
}

// Translate returns a six-field cron expression for input. A valid cron
// expression is returned as is (fields joined by single spaces), so
// Translate is idempotent on its own output. Otherwise the recurrence
// templates are tried in order. Unmatched input is a *ParseError.
func Translate(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", parseErrorf(input, "empty recurrence expression")
	}

	cron, cronErr := ParseCron(trimmed)
	if cronErr == nil {
		return cron.String(), nil
	}

	phrase := strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
	for _, r := range recurrences {
		match := r.pattern.FindStringSubmatch(phrase)
		if match == nil {
			continue
		}

		expression, err := r.build(match)
		if err != nil {
			return "", parseErrorf(input, "%s: %v", r.name, err)
		}
		cron, err := ParseCron(expression)
		if err != nil {
			return "", parseErrorf(input, "%s produced invalid cron %q", r.name, expression)
		}
		return cron.String(), nil
	}

	// Six fields reads as an attempted cron expression; report why it failed.
	if len(strings.Fields(trimmed)) == len(cronFields) {
		return "", cronErr
	}
	return "", parseErrorf(input, "not a six-field cron expression or a supported recurrence phrase")
}

func fixed(expression string) func([]string) (string, error) {
	return func([]string) (string, error) {
		return expression, nil
	}
}

func stride(format string, maximum int) func([]string) (string, error) {
	return func(m []string) (string, error) {
		n, err := strideValue(m[1], maximum)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(format, n), nil
	}
}

func strideValue(text string, maximum int) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > maximum {
		return 0, fmt.Errorf("interval %s must be between 1 and %d", text, maximum)
	}
	return n, nil
}

// atTime prefixes the "day-of-month month day-of-week" tail with the
// second, minute and hour fields for clock (09:00 when empty).
func atTime(clock, tail string) (string, error) {
	hour, minute := defaultHour, defaultMinute
	if clock != "" {
		var err error
		if hour, minute, err = parseClock(clock); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("0 %d %d %s", minute, hour, tail), nil
}
