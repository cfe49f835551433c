package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-06-02 is a Monday.
var monday = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func TestResolveRelativeIsExactOffset(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"1m", time.Minute},
		{"30m", 30 * time.Minute},
		{"45 min", 45 * time.Minute},
		{"90 minutes", 90 * time.Minute},
		{"2h", 2 * time.Hour},
		{"3 hrs", 3 * time.Hour},
		{"1 hour", time.Hour},
		{"1d", 24 * time.Hour},
		{"10 days", 240 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"2 weeks", 14 * 24 * time.Hour},
		{"in 15m", 15 * time.Minute},
		{"  5M ", 5 * time.Minute},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := Resolve(test.input, monday)
			require.NoError(t, err)
			assert.Equal(t, test.want, got.Sub(monday))
		})
	}
}

func TestResolveAbsolute(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, loc)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-12-25 10:00", time.Date(2025, 12, 25, 10, 0, 0, 0, loc)},
		{"2025-12-25T10:00", time.Date(2025, 12, 25, 10, 0, 0, 0, loc)},
		{"2025-12-25t07:30", time.Date(2025, 12, 25, 7, 30, 0, 0, loc)},
		{"2025-12-25T10:00:00Z", time.Date(2025, 12, 25, 12, 0, 0, 0, loc)},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := Resolve(test.input, now)
			require.NoError(t, err)
			assertTime(t, test.want, got)
			assert.Equal(t, loc, got.Location())
		})
	}
}

func TestResolveNextWeekday(t *testing.T) {
	t.Run("monday_before_target_time_rolls_a_week", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		got, err := Resolve("next monday 14:00", now)
		require.NoError(t, err)
		assertTime(t, time.Date(2025, 6, 9, 14, 0, 0, 0, time.UTC), got)
		assert.Equal(t, time.Monday, got.Weekday())
		assert.True(t, got.After(now))
	})

	t.Run("from_wednesday", func(t *testing.T) {
		now := time.Date(2025, 6, 4, 18, 0, 0, 0, time.UTC)
		got, err := Resolve("next monday 14:00", now)
		require.NoError(t, err)
		assertTime(t, time.Date(2025, 6, 9, 14, 0, 0, 0, time.UTC), got)
		assert.Equal(t, time.Monday, got.Weekday())
		assert.Equal(t, 14, got.Hour())
	})

	t.Run("from_sunday_is_tomorrow", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
		got, err := Resolve("next mon 8am", now)
		require.NoError(t, err)
		assertTime(t, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), got)
	})
}

func TestResolveNatural(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"tomorrow 9am", time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)},
		{"Tomorrow at 9:30pm", time.Date(2025, 6, 3, 21, 30, 0, 0, time.UTC)},
		{"today 18:30", time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC)},
		{"today noon", time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)},
		{"tomorrow midnight", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)},
		{"tomorrow 12am", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)},
		{"tomorrow 12pm", time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)},
		{"tomorrow 7 pm", time.Date(2025, 6, 3, 19, 0, 0, 0, time.UTC)},
		{"friday 17:00", time.Date(2025, 6, 6, 17, 0, 0, 0, time.UTC)},
		{"this friday", time.Date(2025, 6, 6, 9, 0, 0, 0, time.UTC)},
		{"this monday 11:00", time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)},
		{"next sunday 10am", time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := Resolve(test.input, monday)
			require.NoError(t, err)
			assertTime(t, test.want, got)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantReason string
	}{
		{"empty", "   ", "empty"},
		{"garbage", "whenever", "unrecognized"},
		{"feb_30", "2025-02-30 10:00", "invalid date"},
		{"hour_25", "2025-07-01 25:00", "invalid date"},
		{"bad_rfc3339", "2025-07-01T10:00:00+99", "RFC 3339"},
		{"past_absolute", "2025-06-01 10:00", "not in the future"},
		{"now_exactly", "2025-06-02 10:00", "not in the future"},
		{"zero_offset", "0m", "not in the future"},
		{"offset_overflow", "99999999999999999999d", "too large"},
		{"today_default_already_past", "today", "not in the future"},
		{"this_monday_past", "this monday 9am", "not in the future"},
		{"bad_clock", "tomorrow 25:00", "out of range"},
		{"bad_12_hour", "tomorrow 13pm", "out of range"},
		{"bad_minute", "tomorrow 9:75", "out of range"},
		{"unknown_weekday", "next funday", "unknown weekday"},
		{"trailing_junk", "tomorrow 9am please", "unrecognized time of day"},
		{"dangling_at", "tomorrow at", "missing time of day"},
		{"dangling_at_weekday", "next friday at", "missing time of day"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Resolve(test.input, monday)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "want *ParseError, got %T: %v", err, err)
			assert.Equal(t, test.input, parseErr.Input)
			assert.Contains(t, parseErr.Reason, test.wantReason)
			assert.Contains(t, err.Error(), test.input)
		})
	}
}
