package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// searchYears bounds Next. The Gregorian calendar repeats its dates and
// weekdays every 400 years, so an expression with no occurrence in that
// window never fires.
const searchYears = 400

// Cron is a parsed six-field cron expression. Use ParseCron to create
// one, then Next to compute occurrences.
type Cron struct {
	seconds     bitset64
	minutes     bitset64
	hours       bitset64
	daysOfMonth bitset64
	months      bitset64
	daysOfWeek  bitset64

	// Day fields starting with * do not restrict; see dayMatches.
	domStar bool
	dowStar bool

	expression string
}

// bitset64 uses a uint64 as a compact set of integers 0-63.
type bitset64 uint64

func (b bitset64) has(value int) bool { return b&(1<<uint(value)) != 0 }
func (b *bitset64) set(value int)     { *b |= 1 << uint(value) }

type cronField struct {
	name    string
	minimum int
	maximum int
	aliases map[string]int
}

var (
	monthAliases = map[string]int{
		"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
		"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
	}
	weekdayAliases = map[string]int{
		"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
	}

	cronFields = []cronField{
		{name: "second", minimum: 0, maximum: 59},
		{name: "minute", minimum: 0, maximum: 59},
		{name: "hour", minimum: 0, maximum: 23},
		{name: "day-of-month", minimum: 1, maximum: 31},
		{name: "month", minimum: 1, maximum: 12, aliases: monthAliases},
		{name: "day-of-week", minimum: 0, maximum: 6, aliases: weekdayAliases},
	}
)

// ParseCron parses a six-field cron expression. Malformed fields, values
// out of range and fields that select nothing are reported as *ParseError.
func ParseCron(expression string) (Cron, error) {
	parts := strings.Fields(expression)
	if len(parts) != len(cronFields) {
		return Cron{}, parseErrorf(expression,
			"expected 6 fields (second minute hour day-of-month month day-of-week), got %d", len(parts))
	}

	var sets [6]bitset64
	for i, field := range cronFields {
		set, err := field.parse(parts[i])
		if err != nil {
			return Cron{}, parseErrorf(expression, "%s field: %v", field.name, err)
		}
		sets[i] = set
	}

	cron := Cron{
		seconds:     sets[0],
		minutes:     sets[1],
		hours:       sets[2],
		daysOfMonth: sets[3],
		months:      sets[4],
		daysOfWeek:  sets[5],
		domStar:     strings.HasPrefix(parts[3], "*"),
		dowStar:     strings.HasPrefix(parts[5], "*"),
		expression:  strings.Join(parts, " "),
	}
	if !cron.feasible() {
		return Cron{}, parseErrorf(expression, "day-of-month and month never coincide")
	}
	return cron, nil
}

// daysInMonth is the longest length of each month, leap years included.
var daysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// feasible reports whether some month contains a selected day of month.
// A restricted day-of-week rescues any day-of-month through the OR rule.
func (c Cron) feasible() bool {
	if !c.domStar && !c.dowStar {
		return true
	}
	for month := 1; month <= 12; month++ {
		if !c.months.has(month) {
			continue
		}
		for day := 1; day <= daysInMonth[month]; day++ {
			if c.daysOfMonth.has(day) {
				return true
			}
		}
	}
	return false
}

// String returns the expression with fields separated by single spaces.
func (c Cron) String() string {
	return c.expression
}

// Next returns the earliest instant strictly after t that matches every
// field, evaluated on the wall clock of t's location. An error means the
// expression has no occurrence at all.
func (c Cron) Next(t time.Time) (time.Time, error) {
	loc := t.Location()
	candidate := t.Truncate(time.Second).Add(time.Second)
	limit := candidate.AddDate(searchYears, 0, 0)

	for candidate.Before(limit) {
		if !c.months.has(int(candidate.Month())) {
			candidate = forward(candidate, time.Date(candidate.Year(), candidate.Month()+1, 1, 0, 0, 0, 0, loc))
			continue
		}

		if !c.dayMatches(candidate) {
			candidate = forward(candidate, time.Date(candidate.Year(), candidate.Month(), candidate.Day()+1, 0, 0, 0, 0, loc))
			continue
		}

		if !c.hours.has(candidate.Hour()) {
			candidate = forward(candidate, time.Date(candidate.Year(), candidate.Month(), candidate.Day(), candidate.Hour()+1, 0, 0, 0, loc))
			continue
		}

		// Minute and second steps move in absolute time so a repeated
		// wall-clock hour at a DST change is still visited.
		if !c.minutes.has(candidate.Minute()) {
			candidate = candidate.Truncate(time.Minute).Add(time.Minute)
			continue
		}

		if !c.seconds.has(candidate.Second()) {
			candidate = candidate.Add(time.Second)
			continue
		}

		return candidate, nil
	}

	return time.Time{}, fmt.Errorf("cron %q: no matching time within %d years of %s",
		c.expression, searchYears, t.Format(time.RFC3339))
}

// dayMatches applies the cron day rule: when both day fields are
// restricted either may match, otherwise both must.
func (c Cron) dayMatches(t time.Time) bool {
	dom := c.daysOfMonth.has(t.Day())
	dow := c.daysOfWeek.has(int(t.Weekday()))
	if c.domStar || c.dowStar {
		return dom && dow
	}
	return dom || dow
}

// forward returns next, or the following whole minute if wall-clock
// normalization around a DST transition did not move past current.
func forward(current, next time.Time) time.Time {
	if next.After(current) {
		return next
	}
	return current.Truncate(time.Minute).Add(time.Minute)
}

// NextOccurrence parses expression and returns its first occurrence
// strictly after t.
func NextOccurrence(expression string, t time.Time) (time.Time, error) {
	c, err := ParseCron(expression)
	if err != nil {
		return time.Time{}, err
	}
	return c.Next(t)
}

// parse turns one field into a bitset. The field may contain
// comma-separated terms.
func (f cronField) parse(field string) (bitset64, error) {
	var result bitset64
	for _, term := range strings.Split(field, ",") {
		bits, err := f.parseTerm(term)
		if err != nil {
			return 0, err
		}
		result |= bits
	}
	if result == 0 {
		return 0, fmt.Errorf("%q selects no values", field)
	}
	return result, nil
}

// parseTerm parses a single term: *, */N, V, V/N, V-V, V-V/N.
func (f cronField) parseTerm(term string) (bitset64, error) {
	if term == "" {
		return 0, fmt.Errorf("empty term")
	}

	rangeExpression, stepExpression, hasStep := strings.Cut(term, "/")
	step := 1
	if hasStep {
		parsed, err := strconv.Atoi(stepExpression)
		if err != nil {
			return 0, fmt.Errorf("invalid step %q", stepExpression)
		}
		if parsed <= 0 {
			return 0, fmt.Errorf("step must be positive, got %d", parsed)
		}
		if parsed > f.maximum-f.minimum+1 {
			return 0, fmt.Errorf("step %d exceeds range %d-%d", parsed, f.minimum, f.maximum)
		}
		step = parsed
	}

	var start, end int
	switch {
	case rangeExpression == "*":
		start, end = f.minimum, f.maximum
	case strings.Contains(rangeExpression, "-"):
		startText, endText, _ := strings.Cut(rangeExpression, "-")
		var err error
		if start, err = f.value(startText); err != nil {
			return 0, err
		}
		if end, err = f.value(endText); err != nil {
			return 0, err
		}
		if start > end {
			return 0, fmt.Errorf("range start %d > end %d", start, end)
		}
	default:
		value, err := f.value(rangeExpression)
		if err != nil {
			return 0, err
		}
		start, end = value, value
		if hasStep {
			end = f.maximum
		}
	}

	var result bitset64
	for value := start; value <= end; value += step {
		result.set(value)
	}
	return result, nil
}

func (f cronField) value(text string) (int, error) {
	if alias, ok := f.aliases[strings.ToUpper(text)]; ok {
		return alias, nil
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", text)
	}
	if value < f.minimum || value > f.maximum {
		return 0, fmt.Errorf("value %d out of range [%d-%d]", value, f.minimum, f.maximum)
	}
	return value, nil
}
