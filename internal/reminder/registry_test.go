package reminder

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/reminder-cli/internal/schedule"
)

// 2025-06-02 is a Monday.
var monday = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func assertTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %v, got %v", want, got)
}

func recurringRecord(id, expression string, next time.Time) Record {
	return Record{
		ID:         id,
		Title:      "recurring " + id,
		Schedule:   schedule.Recurring(expression),
		NextFireAt: next,
		CreatedAt:  next.Add(-time.Hour),
		UpdatedAt:  next.Add(-time.Hour),
	}
}

func oneShotRecord(id string, at time.Time) Record {
	return Record{
		ID:         id,
		Title:      "one-shot " + id,
		Schedule:   schedule.OneShot(at),
		NextFireAt: at,
		CreatedAt:  at.Add(-time.Hour),
		UpdatedAt:  at.Add(-time.Hour),
	}
}

func TestRegistryInsert(t *testing.T) {
	registry := NewRegistry(nil)

	oneShot, err := registry.Insert(Draft{
		Title:       "  Dentist ",
		Description: "bring card",
		Tags:        []string{"Health", " health", "", "errands"},
		Schedule:    schedule.OneShot(monday.Add(2 * time.Hour)),
	}, monday)
	require.NoError(t, err)
	assert.Len(t, oneShot.ID, 36)
	assert.Equal(t, "Dentist", oneShot.Title)
	assert.Equal(t, []string{"errands", "health"}, oneShot.Tags)
	assertTime(t, monday.Add(2*time.Hour), oneShot.NextFireAt)
	assertTime(t, monday, oneShot.CreatedAt)
	assert.Equal(t, StatusActive, oneShot.Status())

	recurring, err := registry.Insert(Draft{
		Title:    "Standup",
		Schedule: schedule.Recurring("0 0 9 * * MON-FRI"),
	}, monday)
	require.NoError(t, err)
	assertTime(t, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), recurring.NextFireAt)
	assert.NotEqual(t, oneShot.ID, recurring.ID)
	assert.Equal(t, 2, registry.Len())
}

func TestRegistryInsertRejectsInvalid(t *testing.T) {
	registry := NewRegistry(nil)

	_, err := registry.Insert(Draft{Title: "  ", Schedule: schedule.OneShot(monday)}, monday)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "title", validationErr.Field)

	_, err = registry.Insert(Draft{Title: "bad", Schedule: schedule.Recurring("0 9 * * *")}, monday)
	var parseErr *schedule.ParseError
	assert.True(t, errors.As(err, &parseErr))

	_, err = registry.Insert(Draft{Title: "zero"}, monday)
	assert.Error(t, err)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistryDueOrderingAndExclusions(t *testing.T) {
	completed := oneShotRecord("aaaa0000-0000-0000-0000-000000000005", monday.Add(-5*time.Hour))
	completed.Completed = true
	paused := recurringRecord("aaaa0000-0000-0000-0000-000000000004", "0 0 9 * * *", monday.AddDate(0, 0, -30))
	paused.Paused = true

	registry := NewRegistry([]Record{
		oneShotRecord("aaaa0000-0000-0000-0000-000000000003", monday.Add(-time.Hour)),
		recurringRecord("aaaa0000-0000-0000-0000-000000000002", "0 0 9 * * *", monday.Add(-time.Hour)),
		oneShotRecord("aaaa0000-0000-0000-0000-000000000001", monday.Add(-2*time.Hour)),
		oneShotRecord("aaaa0000-0000-0000-0000-000000000006", monday),
		oneShotRecord("aaaa0000-0000-0000-0000-000000000007", monday.Add(time.Second)),
		completed,
		paused,
	})

	due := registry.Due(monday)
	var ids []string
	for _, rec := range due {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{
		"aaaa0000-0000-0000-0000-000000000001",
		"aaaa0000-0000-0000-0000-000000000002",
		"aaaa0000-0000-0000-0000-000000000003",
		"aaaa0000-0000-0000-0000-000000000006",
	}, ids)
}

func TestRegistryPausedRecurringResumesFromNow(t *testing.T) {
	id := "bbbb0000-0000-0000-0000-000000000001"
	registry := NewRegistry([]Record{
		recurringRecord(id, "0 0 9 * * *", monday.AddDate(0, 0, -1)),
	})

	_, err := registry.Pause(id, monday)
	require.NoError(t, err)

	// A year later the frozen instant is far in the past, yet nothing is due.
	later := monday.AddDate(1, 0, 0)
	assert.Empty(t, registry.Due(later))

	resumed, err := registry.Resume(id, later)
	require.NoError(t, err)
	assert.False(t, resumed.Paused)
	assertTime(t, time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC), resumed.NextFireAt)
	assert.True(t, resumed.NextFireAt.After(later))
	assert.Empty(t, registry.Due(later))
}

func TestRegistryResumeKeepsOneShotInstant(t *testing.T) {
	id := "bbbb0000-0000-0000-0000-000000000002"
	at := monday.Add(-time.Hour)
	registry := NewRegistry([]Record{oneShotRecord(id, at)})

	_, err := registry.Pause(id, monday.Add(-2*time.Hour))
	require.NoError(t, err)
	resumed, err := registry.Resume(id, monday)
	require.NoError(t, err)
	assertTime(t, at, resumed.NextFireAt)
	assert.Len(t, registry.Due(monday), 1)
}

func TestRegistryUpdate(t *testing.T) {
	id := "cccc0000-0000-0000-0000-000000000001"
	original := oneShotRecord(id, monday.Add(-time.Hour))
	original.Completed = true
	original.Tags = []string{"home", "work"}
	registry := NewRegistry([]Record{original})

	title := "Renamed"
	updated, err := registry.Update(id, Patch{
		Title:      &title,
		AddTags:    []string{"Urgent"},
		RemoveTags: []string{"WORK"},
	}, monday)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, []string{"home", "urgent"}, updated.Tags)
	assert.True(t, updated.Completed, "metadata edits keep scheduling state")
	assertTime(t, original.NextFireAt, updated.NextFireAt)
	assertTime(t, monday, updated.UpdatedAt)

	recurring := schedule.Recurring("0 0 10 * * MON")
	updated, err = registry.Update(id, Patch{Schedule: &recurring}, monday)
	require.NoError(t, err)
	assert.True(t, updated.Schedule.IsRecurring())
	assert.False(t, updated.Completed, "a new schedule re-activates the record")
	assertTime(t, time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC), updated.NextFireAt)

	empty := " "
	_, err = registry.Update(id, Patch{Title: &empty}, monday)
	assert.Error(t, err)

	bad := schedule.Recurring("nope")
	_, err = registry.Update(id, Patch{Schedule: &bad, Title: &title}, monday)
	assert.Error(t, err)
	current, err := registry.Get(id)
	require.NoError(t, err)
	assert.True(t, current.Schedule.IsRecurring(), "failed edits leave the record untouched")
}

func TestRegistryLookupByPrefix(t *testing.T) {
	registry := NewRegistry([]Record{
		oneShotRecord("abcd1234-0000-0000-0000-000000000001", monday),
		oneShotRecord("abcd5678-0000-0000-0000-000000000002", monday),
	})

	rec, err := registry.Get("abcd1")
	require.NoError(t, err)
	assert.Equal(t, "abcd1234-0000-0000-0000-000000000001", rec.ID)

	rec, err = registry.Get("ABCD5678")
	require.NoError(t, err)
	assert.Equal(t, "abcd5678-0000-0000-0000-000000000002", rec.ID)

	_, err = registry.Get("abcd")
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, 2, notFound.Matches)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = registry.Get("abc")
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, err.Error(), "not found")

	_, err = registry.Delete("ffff")
	assert.True(t, errors.As(err, &notFound))
}

func TestRegistryDelete(t *testing.T) {
	id := "dddd0000-0000-0000-0000-000000000001"
	registry := NewRegistry([]Record{oneShotRecord(id, monday)})

	deleted, err := registry.Delete("dddd0000")
	require.NoError(t, err)
	assert.Equal(t, id, deleted.ID)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistryListFilter(t *testing.T) {
	work := oneShotRecord("eeee0000-0000-0000-0000-000000000001", monday.Add(time.Hour))
	work.Tags = []string{"work"}
	done := oneShotRecord("eeee0000-0000-0000-0000-000000000002", monday.Add(-time.Hour))
	done.Completed = true
	done.Tags = []string{"work"}
	paused := recurringRecord("eeee0000-0000-0000-0000-000000000003", "0 0 9 * * *", monday.Add(2*time.Hour))
	paused.Paused = true

	registry := NewRegistry([]Record{work, done, paused})

	assert.Len(t, registry.List(Filter{}), 2)
	assert.Len(t, registry.List(Filter{IncludeCompleted: true}), 3)
	assert.Len(t, registry.List(Filter{Tag: "WORK"}), 1)
	assert.Len(t, registry.List(Filter{Tag: "work", IncludeCompleted: true}), 2)

	onlyPaused := registry.List(Filter{OnlyPaused: true})
	require.Len(t, onlyPaused, 1)
	assert.Equal(t, paused.ID, onlyPaused[0].ID)

	all := registry.List(Filter{IncludeCompleted: true})
	assert.Equal(t, done.ID, all[0].ID, "ordered by next fire instant")
}

func TestRegistryCleanRemovesOnlyCompletedOneShots(t *testing.T) {
	done := oneShotRecord("ffff0000-0000-0000-0000-000000000001", monday.Add(-time.Hour))
	done.Completed = true
	pending := oneShotRecord("ffff0000-0000-0000-0000-000000000002", monday.Add(time.Hour))
	recurring := recurringRecord("ffff0000-0000-0000-0000-000000000003", "0 0 9 * * *", monday)

	registry := NewRegistry([]Record{done, pending, recurring})
	removed := registry.Clean()
	require.Len(t, removed, 1)
	assert.Equal(t, done.ID, removed[0].ID)
	assert.Equal(t, 2, registry.Len())
	assert.Empty(t, registry.Clean())
}

func TestRegistryTags(t *testing.T) {
	a := oneShotRecord("0000aaaa-0000-0000-0000-000000000001", monday)
	a.Tags = []string{"home", "work"}
	b := oneShotRecord("0000aaaa-0000-0000-0000-000000000002", monday)
	b.Tags = []string{"work"}

	registry := NewRegistry([]Record{a, b})
	assert.Equal(t, []TagCount{{Tag: "home", Count: 1}, {Tag: "work", Count: 2}}, registry.Tags())
}

func TestRegistryMarkFired(t *testing.T) {
	oneShot := oneShotRecord("1111aaaa-0000-0000-0000-000000000001", monday.Add(-time.Minute))
	recurring := recurringRecord("1111aaaa-0000-0000-0000-000000000002", "0 0 9 * * *", monday.AddDate(0, 0, -3))
	registry := NewRegistry([]Record{oneShot, recurring})

	fired := registry.MarkFired(oneShot, monday)
	assert.True(t, fired)
	got, _ := registry.Get(oneShot.ID)
	assert.True(t, got.Completed)
	assertTime(t, oneShot.NextFireAt, got.NextFireAt)
	require.NotNil(t, got.LastFiredAt)
	assertTime(t, monday, *got.LastFiredAt)

	fired = registry.MarkFired(recurring, monday)
	assert.True(t, fired)
	got, _ = registry.Get(recurring.ID)
	assert.False(t, got.Completed)
	assertTime(t, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), got.NextFireAt)
	assert.Empty(t, registry.Due(monday))
}

func TestRegistryMarkFiredSkipsConcurrentReschedule(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
	}{
		{"new_schedule", Patch{Schedule: ptr(schedule.Recurring("0 0 11 * * *"))}},
		{"new_one_shot", Patch{Schedule: ptr(schedule.OneShot(monday.Add(time.Hour)))}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			seen := recurringRecord("2222aaaa-0000-0000-0000-000000000001", "0 0 9 * * *", monday.Add(-time.Hour))
			registry := NewRegistry([]Record{seen})

			edited, err := registry.Update(seen.ID, test.patch, monday.Add(-time.Second))
			require.NoError(t, err)

			assert.False(t, registry.MarkFired(seen, monday))
			got, _ := registry.Get(seen.ID)
			assertTime(t, edited.NextFireAt, got.NextFireAt)
			assert.Nil(t, got.LastFiredAt)
		})
	}

	t.Run("paused", func(t *testing.T) {
		seen := recurringRecord("2222aaaa-0000-0000-0000-000000000002", "0 0 9 * * *", monday.Add(-time.Hour))
		registry := NewRegistry([]Record{seen})
		_, err := registry.Pause(seen.ID, monday.Add(-time.Second))
		require.NoError(t, err)

		assert.False(t, registry.MarkFired(seen, monday))
		got, _ := registry.Get(seen.ID)
		assert.True(t, got.Paused)
		assert.Nil(t, got.LastFiredAt)
	})

	t.Run("deleted", func(t *testing.T) {
		seen := recurringRecord("2222aaaa-0000-0000-0000-000000000003", "0 0 9 * * *", monday.Add(-time.Hour))
		registry := NewRegistry(nil)
		assert.False(t, registry.MarkFired(seen, monday))
	})
}

func TestRegistryMarkFiredKeepsMetadataEdits(t *testing.T) {
	seen := recurringRecord("2222bbbb-0000-0000-0000-000000000001", "0 0 9 * * *", monday.Add(-time.Hour))
	registry := NewRegistry([]Record{seen})

	title := "edited"
	_, err := registry.Update(seen.ID, Patch{Title: &title, AddTags: []string{"work"}}, monday.Add(-time.Second))
	require.NoError(t, err)

	assert.True(t, registry.MarkFired(seen, monday))
	got, _ := registry.Get(seen.ID)
	assert.Equal(t, "edited", got.Title)
	assert.Equal(t, []string{"work"}, got.Tags)
	assertTime(t, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), got.NextFireAt)
	require.NotNil(t, got.LastFiredAt)
	assert.Empty(t, registry.Due(monday))
}

func TestRegistryMarkFiredCompletesScheduleWithoutOccurrence(t *testing.T) {
	seen := recurringRecord("2222cccc-0000-0000-0000-000000000001", "not a cron", monday.Add(-time.Hour))
	registry := NewRegistry([]Record{seen})

	assert.True(t, registry.MarkFired(seen, monday))
	got, _ := registry.Get(seen.ID)
	assert.True(t, got.Completed)
	require.NotNil(t, got.LastFiredAt)
	assert.Empty(t, registry.Due(monday.Add(time.Hour)))
}

func TestRegistryAdopt(t *testing.T) {
	existing := oneShotRecord("3333aaaa-0000-0000-0000-000000000001", monday.Add(time.Hour))
	registry := NewRegistry([]Record{existing})

	replacement := existing
	replacement.Title = "replacement"

	stored, err := registry.Adopt(replacement, false, monday)
	require.NoError(t, err)
	assert.False(t, stored)
	got, _ := registry.Get(existing.ID)
	assert.Equal(t, existing.Title, got.Title)

	stored, err = registry.Adopt(replacement, true, monday)
	require.NoError(t, err)
	assert.True(t, stored)
	got, _ = registry.Get(existing.ID)
	assert.Equal(t, "replacement", got.Title)

	fresh := Record{
		ID:       "3333AAAA-0000-0000-0000-000000000002",
		Title:    "fresh",
		Schedule: schedule.Recurring("0 0 9 * * *"),
	}
	stored, err = registry.Adopt(fresh, false, monday)
	require.NoError(t, err)
	assert.True(t, stored)
	got, err = registry.Get("3333aaaa-0000-0000-0000-000000000002")
	require.NoError(t, err)
	assertTime(t, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), got.NextFireAt)
	assertTime(t, monday, got.CreatedAt)

	_, err = registry.Adopt(Record{ID: "not-a-uuid", Title: "x", Schedule: fresh.Schedule}, false, monday)
	assert.Error(t, err)
	_, err = registry.Adopt(Record{ID: "3333aaaa-0000-0000-0000-000000000009", Title: "x"}, false, monday)
	assert.Error(t, err)
}
