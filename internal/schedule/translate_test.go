package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"every second", "* * * * * *"},
		{"every 10 seconds", "*/10 * * * * *"},
		{"every minute", "0 * * * * *"},
		{"every 15 minutes", "0 */15 * * * *"},
		{"every 1 minute", "0 */1 * * * *"},
		{"every hour", "0 0 * * * *"},
		{"hourly", "0 0 * * * *"},
		{"every 2 hours", "0 0 */2 * * *"},
		{"every day", "0 0 9 * * *"},
		{"daily", "0 0 9 * * *"},
		{"every day at 9am", "0 0 9 * * *"},
		{"daily at 18:30", "0 30 18 * * *"},
		{"every 3 days at 7pm", "0 0 19 */3 * *"},
		{"every weekday at 8:30", "0 30 8 * * MON-FRI"},
		{"every weekend at 10am", "0 0 10 * * SAT,SUN"},
		{"every weekend day", "0 0 9 * * SAT,SUN"},
		{"every monday at 10am", "0 0 10 * * MON"},
		{"every fri at noon", "0 0 12 * * FRI"},
		{"every Sunday", "0 0 9 * * SUN"},
		{"every month", "0 0 9 1 * *"},
		{"monthly on the 15th at 12:00", "0 0 12 15 * *"},
		{"every month on the 1st", "0 0 9 1 * *"},
		{"  Every   Day  AT  9AM ", "0 0 9 * * *"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := Translate(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)

			_, err = ParseCron(got)
			assert.NoError(t, err)
		})
	}
}

func TestTranslateCronPassesThrough(t *testing.T) {
	got, err := Translate("0 0 9 * * MON-FRI")
	require.NoError(t, err)
	assert.Equal(t, "0 0 9 * * MON-FRI", got)

	got, err = Translate("  0   */5  *  * *  * ")
	require.NoError(t, err)
	assert.Equal(t, "0 */5 * * * *", got)
}

func TestTranslateIsIdempotent(t *testing.T) {
	inputs := []string{
		"every day at 9am",
		"every 5 minutes",
		"every weekday at 8:30",
		"monthly on the 31st",
		"0 0 9 * * *",
		"*/30 * * * * *",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once, err := Translate(input)
			require.NoError(t, err)
			twice, err := Translate(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantReason string
	}{
		{"empty", "", "empty"},
		{"unknown_phrase", "every blue moon", "not a six-field cron"},
		{"five_field_cron", "0 9 * * *", "not a six-field cron"},
		{"six_field_feb_30", "0 0 0 30 2 *", "never coincide"},
		{"six_field_bad_hour", "0 0 25 * * *", "hour field"},
		{"zero_minutes", "every 0 minutes", "between 1 and 59"},
		{"too_many_minutes", "every 60 minutes", "between 1 and 59"},
		{"too_many_hours", "every 24 hours", "between 1 and 23"},
		{"too_many_days", "every 32 days", "between 1 and 31"},
		{"bad_clock", "every day at 25:00", "out of range"},
		{"bad_day_of_month", "monthly on the 32nd", "out of range"},
		{"day_zero", "every month on the 0th", "out of range"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Translate(test.input)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "want *ParseError, got %T", err)
			assert.Equal(t, test.input, parseErr.Input)
			assert.Contains(t, parseErr.Reason, test.wantReason)
		})
	}
}
