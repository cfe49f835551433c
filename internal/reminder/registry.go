package reminder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// minPrefixLength is the shortest ID prefix accepted as a lookup key.
const minPrefixLength = 4

// Registry is the in-memory view of all reminders, keyed by ID. It is not
// safe for concurrent use; callers get one from Storage.Update or build
// one from a loaded snapshot.
type Registry struct {
	records map[string]*Record
}

// NewRegistry builds a registry from a snapshot.
func NewRegistry(records []Record) *Registry {
	r := &Registry{records: make(map[string]*Record, len(records))}
	for i := range records {
		rec := records[i]
		r.records[rec.ID] = &rec
	}
	return r
}

// Len returns the number of records.
func (r *Registry) Len() int { return len(r.records) }

// Records returns a copy of every record ordered by ID.
func (r *Registry) Records() []Record {
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Insert assigns an ID to draft, computes its first fire instant from now
// and stores it.
func (r *Registry) Insert(draft Draft, now time.Time) (Record, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return Record{}, &ValidationError{Field: "title", Reason: "is required"}
	}
	if err := draft.Schedule.Validate(); err != nil {
		return Record{}, err
	}
	next, err := draft.Schedule.Next(now)
	if err != nil {
		return Record{}, err
	}

	rec := &Record{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(draft.Description),
		Tags:        normalizeTags(draft.Tags),
		Schedule:    draft.Schedule,
		NextFireAt:  next,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.records[rec.ID] = rec
	return *rec, nil
}

// Update applies patch to the record named by id. Replacing the schedule
// recomputes the next fire instant from now and re-activates a completed
// record; metadata-only patches leave scheduling untouched.
func (r *Registry) Update(id string, patch Patch, now time.Time) (Record, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Record{}, err
	}

	var next time.Time
	if patch.Schedule != nil {
		if err := patch.Schedule.Validate(); err != nil {
			return Record{}, err
		}
		if next, err = patch.Schedule.Next(now); err != nil {
			return Record{}, err
		}
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return Record{}, &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		rec.Title = title
	}
	if patch.Description != nil {
		rec.Description = strings.TrimSpace(*patch.Description)
	}
	if len(patch.AddTags) > 0 || len(patch.RemoveTags) > 0 {
		tags := mapset.NewSet(rec.Tags...)
		tags.Append(normalizeTags(patch.AddTags)...)
		for _, tag := range normalizeTags(patch.RemoveTags) {
			tags.Remove(tag)
		}
		rec.Tags = sortedTags(tags)
	}
	if patch.Schedule != nil {
		rec.Schedule = *patch.Schedule
		rec.NextFireAt = next
		rec.Completed = false
	}

	rec.UpdatedAt = now
	return *rec, nil
}

// Pause excludes the record from Due until it is resumed.
func (r *Registry) Pause(id string, now time.Time) (Record, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Record{}, err
	}
	rec.Paused = true
	rec.UpdatedAt = now
	return *rec, nil
}

// Resume clears the paused flag. A recurring schedule is recomputed from
// now, since the instant frozen at pause time may be long past.
func (r *Registry) Resume(id string, now time.Time) (Record, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Record{}, err
	}
	if rec.Schedule.IsRecurring() {
		next, err := rec.Schedule.Next(now)
		if err != nil {
			return Record{}, err
		}
		rec.NextFireAt = next
	}
	rec.Paused = false
	rec.UpdatedAt = now
	return *rec, nil
}

// Delete removes the record named by id and returns it.
func (r *Registry) Delete(id string) (Record, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Record{}, err
	}
	delete(r.records, rec.ID)
	return *rec, nil
}

// Get returns the record whose ID equals id or, failing that, the only
// record whose ID starts with it.
func (r *Registry) Get(id string) (Record, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Record{}, err
	}
	return *rec, nil
}

// Due returns the records that should fire at now: neither paused nor
// completed, with a next fire instant at or before now. Results are
// ordered by next fire instant, then ID.
func (r *Registry) Due(now time.Time) []Record {
	var due []Record
	for _, rec := range r.records {
		if rec.IsDue(now) {
			due = append(due, *rec)
		}
	}
	sortByNextFire(due)
	return due
}

// List returns the records matching filter in Due order.
func (r *Registry) List(filter Filter) []Record {
	var out []Record
	for _, rec := range r.records {
		if filter.match(*rec) {
			out = append(out, *rec)
		}
	}
	sortByNextFire(out)
	return out
}

// Clean removes completed one-shot records and returns them.
func (r *Registry) Clean() []Record {
	var removed []Record
	for id, rec := range r.records {
		if rec.Completed && !rec.Schedule.IsRecurring() {
			removed = append(removed, *rec)
			delete(r.records, id)
		}
	}
	sortByNextFire(removed)
	return removed
}

// Tags counts reminders per tag, ordered by tag.
func (r *Registry) Tags() []TagCount {
	counts := make(map[string]int)
	for _, rec := range r.records {
		for _, tag := range rec.Tags {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// MarkFired records a successful firing at now of the record as the
// caller observed it in seen: a one-shot completes, a recurring schedule
// advances to its next occurrence after now. A recurring schedule with no
// further occurrence completes too.
//
// The change is skipped, and false returned, when the record is gone or
// its schedule state (schedule, next fire instant, paused, completed) no
// longer matches seen. Edits to title, description or tags made in the
// meantime are kept and the firing still applies.
func (r *Registry) MarkFired(seen Record, now time.Time) bool {
	rec, ok := r.records[seen.ID]
	if !ok || !sameScheduleState(*rec, seen) {
		return false
	}

	if rec.Schedule.IsRecurring() {
		next, err := rec.Schedule.Next(now)
		if err != nil {
			rec.Completed = true
		} else {
			rec.NextFireAt = next
		}
	} else {
		rec.Completed = true
	}

	fired := now
	rec.LastFiredAt = &fired
	rec.UpdatedAt = now
	return true
}

func sameScheduleState(a, b Record) bool {
	return a.Schedule.Equal(b.Schedule) &&
		a.NextFireAt.Equal(b.NextFireAt) &&
		a.Paused == b.Paused &&
		a.Completed == b.Completed
}

// Adopt stores a record built elsewhere, such as an import file. An
// existing record with the same ID is replaced only when overwrite is set.
// A missing next fire instant is computed from now.
func (r *Registry) Adopt(rec Record, overwrite bool, now time.Time) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, fmt.Errorf("reminder %s: %w", rec.ID, err)
	}
	rec.ID = uuid.MustParse(rec.ID).String()
	if _, exists := r.records[rec.ID]; exists && !overwrite {
		return false, nil
	}

	rec.Title = strings.TrimSpace(rec.Title)
	rec.Tags = normalizeTags(rec.Tags)
	if rec.NextFireAt.IsZero() {
		next, err := rec.Schedule.Next(now)
		if err != nil {
			return false, fmt.Errorf("reminder %s: %w", rec.ID, err)
		}
		rec.NextFireAt = next
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	r.records[rec.ID] = &rec
	return true, nil
}

func (r *Registry) lookup(id string) (*Record, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if rec, ok := r.records[id]; ok {
		return rec, nil
	}
	if len(id) < minPrefixLength {
		return nil, &NotFoundError{ID: id}
	}

	var match *Record
	matches := 0
	for key, rec := range r.records {
		if strings.HasPrefix(key, id) {
			match = rec
			matches++
		}
	}
	if matches != 1 {
		return nil, &NotFoundError{ID: id, Matches: matches}
	}
	return match, nil
}

func sortByNextFire(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].NextFireAt.Equal(records[j].NextFireAt) {
			return records[i].NextFireAt.Before(records[j].NextFireAt)
		}
		return records[i].ID < records[j].ID
	})
}
