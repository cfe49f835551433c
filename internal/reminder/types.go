package reminder

import (
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/notexe/reminder-cli/internal/schedule"
)

// Status values for reminders.
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

// shortIDLength is how many characters of the ID are shown in listings.
const shortIDLength = 8

// Record is a registered reminder.
type Record struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Schedule    schedule.Spec `json:"schedule" yaml:"schedule"`
	NextFireAt  time.Time     `json:"next_fire_at" yaml:"next_fire_at"`
	Paused      bool          `json:"paused" yaml:"paused"`
	Completed   bool          `json:"completed" yaml:"completed"`
	LastFiredAt *time.Time    `json:"last_fired_at,omitempty" yaml:"last_fired_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" yaml:"updated_at"`
}

// ShortID returns the ID prefix shown in listings.
func (r Record) ShortID() string {
	if len(r.ID) <= shortIDLength {
		return r.ID
	}
	return r.ID[:shortIDLength]
}

// Status reports completed, paused or active, in that precedence.
func (r Record) Status() string {
	switch {
	case r.Completed:
		return StatusCompleted
	case r.Paused:
		return StatusPaused
	default:
		return StatusActive
	}
}

// IsDue reports whether the record should fire at now.
func (r Record) IsDue(now time.Time) bool {
	return !r.Completed && !r.Paused && !r.NextFireAt.After(now)
}

// HasTag reports whether the record carries tag (case-insensitive).
func (r Record) HasTag(tag string) bool {
	tag = normalizeTag(tag)
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks a record that arrives from outside the registry, such
// as an import file.
func (r Record) Validate() error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return &ValidationError{Field: "id", Reason: "must be a UUID"}
	}
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	return r.Schedule.Validate()
}

// Draft holds the fields of a reminder about to be inserted.
type Draft struct {
	Title       string
	Description string
	Tags        []string
	Schedule    schedule.Spec
}

// Patch holds optional changes for an existing reminder. Nil fields are
// left untouched.
type Patch struct {
	Title       *string
	Description *string
	Schedule    *schedule.Spec
	AddTags     []string
	RemoveTags  []string
}

// Filter narrows List results.
type Filter struct {
	Tag              string
	IncludeCompleted bool
	OnlyPaused       bool
}

func (f Filter) match(r Record) bool {
	if r.Completed && !f.IncludeCompleted {
		return false
	}
	if f.OnlyPaused && !r.Paused {
		return false
	}
	if f.Tag != "" && !r.HasTag(f.Tag) {
		return false
	}
	return true
}

// TagCount is a tag with the number of reminders carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// normalizeTags lower-cases, trims, de-duplicates and sorts tags. Blank
// entries are dropped.
func normalizeTags(tags []string) []string {
	set := mapset.NewSet[string]()
	for _, tag := range tags {
		if t := normalizeTag(tag); t != "" {
			set.Add(t)
		}
	}
	return sortedTags(set)
}

func sortedTags(set mapset.Set[string]) []string {
	if set.Cardinality() == 0 {
		return nil
	}
	tags := set.ToSlice()
	sort.Strings(tags)
	return tags
}
