package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/reminder-cli/internal/schedule"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	fired := monday.Add(-time.Minute).Add(123 * time.Nanosecond)
	oneShot := oneShotRecord("aaaa1111-0000-0000-0000-000000000001", monday.Add(time.Hour))
	oneShot.Description = "with details"
	oneShot.Tags = []string{"home", "work"}
	recurring := recurringRecord("aaaa1111-0000-0000-0000-000000000002", "0 30 8 * * MON-FRI", monday.Add(time.Hour))
	recurring.Paused = true
	recurring.LastFiredAt = &fired

	require.NoError(t, store.Save(ctx, []Record{recurring, oneShot}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	got := loaded[0]
	assert.Equal(t, oneShot.ID, got.ID)
	assert.Equal(t, "with details", got.Description)
	assert.Equal(t, []string{"home", "work"}, got.Tags)
	fireAt, ok := got.Schedule.FireAt()
	require.True(t, ok)
	assertTime(t, monday.Add(time.Hour), fireAt)
	assertTime(t, oneShot.NextFireAt, got.NextFireAt)
	assertTime(t, oneShot.UpdatedAt, got.UpdatedAt)
	assert.Nil(t, got.LastFiredAt)

	got = loaded[1]
	expression, ok := got.Schedule.Cron()
	require.True(t, ok)
	assert.Equal(t, "0 30 8 * * MON-FRI", expression)
	assert.True(t, got.Paused)
	assert.False(t, got.Completed)
	assert.Nil(t, got.Tags)
	require.NotNil(t, got.LastFiredAt)
	assertTime(t, fired, *got.LastFiredAt)

	require.NoError(t, store.Save(ctx, []Record{oneShot}))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1, "save replaces the whole snapshot")
}

func TestStoreUpdateCommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var id string
	err := store.Update(ctx, func(registry *Registry) error {
		rec, err := registry.Insert(Draft{Title: "first", Schedule: schedule.OneShot(monday)}, monday.Add(-time.Hour))
		id = rec.ID
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.Update(ctx, func(registry *Registry) error {
		if _, err := registry.Delete(id); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1, "failed update must not be written")
	assert.Equal(t, id, records[0].ID)

	err = store.Update(ctx, func(registry *Registry) error {
		_, err := registry.Get("missing-id")
		return err
	})
	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound), "errors from fn come back unwrapped")
}

func TestStoreConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reminders.db")

	// Two handles on one file stand in for the CLI and daemon processes.
	first, err := NewStore(path)
	require.NoError(t, err)
	defer first.Close()
	second, err := NewStore(path)
	require.NoError(t, err)
	defer second.Close()

	const perWriter = 20
	var wg sync.WaitGroup
	for _, store := range []*Store{first, second} {
		wg.Add(1)
		go func(store *Store) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				err := store.Update(ctx, func(registry *Registry) error {
					_, err := registry.Insert(Draft{Title: "concurrent", Schedule: schedule.Recurring("0 0 9 * * *")}, monday)
					return err
				})
				assert.NoError(t, err)
			}
		}(store)
	}
	wg.Wait()

	records, err := first.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2*perWriter)
}

func TestStoreHeartbeat(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.ReadHeartbeat(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	hb := Heartbeat{PID: 4242, StartedAt: monday}
	require.NoError(t, store.WriteHeartbeat(ctx, hb))
	got, ok, err := store.ReadHeartbeat(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4242, got.PID)
	assertTime(t, monday, got.StartedAt)
	assert.True(t, got.LastCycleAt.IsZero())

	hb.LastCycleAt = monday.Add(10 * time.Second)
	hb.Fired = 3
	hb.LastError = "telegram: timeout"
	require.NoError(t, store.WriteHeartbeat(ctx, hb))
	got, ok, err = store.ReadHeartbeat(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assertTime(t, monday.Add(10*time.Second), got.LastCycleAt)
	assert.Equal(t, 3, got.Fired)
	assert.Equal(t, "telegram: timeout", got.LastError)

	require.NoError(t, store.ClearHeartbeat(ctx))
	_, ok, err = store.ReadHeartbeat(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewStoreReportsPersistenceError(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing", "dir", "reminders.db"))
	var persistenceErr *PersistenceError
	assert.True(t, errors.As(err, &persistenceErr))
}
