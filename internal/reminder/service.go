package reminder

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/notexe/reminder-cli/internal/schedule"
)

// AddRequest describes a new reminder. Exactly one of At (a one-shot time
// expression) or Cron (a cron expression or recurrence phrase) is set.
type AddRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	At          string   `json:"at,omitempty" validate:"required_without=Cron,excluded_with=Cron"`
	Cron        string   `json:"cron,omitempty" validate:"required_without=At"`
}

// EditRequest describes changes to an existing reminder. Setting At or
// Cron replaces the schedule.
type EditRequest struct {
	ID          string   `json:"id" validate:"required"`
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	At          string   `json:"at,omitempty" validate:"excluded_with=Cron"`
	Cron        string   `json:"cron,omitempty"`
	AddTags     []string `json:"add_tags,omitempty" validate:"omitempty,dive,max=50"`
	RemoveTags  []string `json:"remove_tags,omitempty"`
}

func (r EditRequest) empty() bool {
	return r.Title == nil && r.Description == nil && r.At == "" && r.Cron == "" &&
		len(r.AddTags) == 0 && len(r.RemoveTags) == 0
}

// Service implements the reminder operations offered to the CLI, the
// shell and the MCP server. Every mutation is one Storage.Update.
type Service struct {
	storage  Storage
	clock    clock.Clock
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a Service over storage.
func NewService(storage Storage, clk clock.Clock, logger *zap.Logger) *Service {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{
		storage:  storage,
		clock:    clk,
		validate: validate,
		logger:   logger,
	}
}

// Add normalizes the request's schedule and inserts a reminder.
func (s *Service) Add(ctx context.Context, req AddRequest) (Record, error) {
	if err := s.check(req); err != nil {
		return Record{}, err
	}

	now := s.clock.Now()
	spec, err := resolveSchedule(req.At, req.Cron, now)
	if err != nil {
		return Record{}, err
	}

	var added Record
	err = s.storage.Update(ctx, func(registry *Registry) error {
		var err error
		added, err = registry.Insert(Draft{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			Schedule:    *spec,
		}, now)
		return err
	})
	if err != nil {
		return Record{}, err
	}

	s.logger.Info("reminder added",
		zap.String("id", added.ID),
		zap.Stringer("schedule", added.Schedule),
		zap.Time("next_fire_at", added.NextFireAt))
	return added, nil
}

// Edit applies req to the reminder it names.
func (s *Service) Edit(ctx context.Context, req EditRequest) (Record, error) {
	if err := s.check(req); err != nil {
		return Record{}, err
	}
	if req.empty() {
		return Record{}, &ValidationError{Field: "edit", Reason: "no changes given"}
	}

	now := s.clock.Now()
	patch := Patch{
		Title:       req.Title,
		Description: req.Description,
		AddTags:     req.AddTags,
		RemoveTags:  req.RemoveTags,
	}
	if req.At != "" || req.Cron != "" {
		spec, err := resolveSchedule(req.At, req.Cron, now)
		if err != nil {
			return Record{}, err
		}
		patch.Schedule = spec
	}

	return s.mutate(ctx, "edited", func(registry *Registry) (Record, error) {
		return registry.Update(req.ID, patch, now)
	})
}

// Pause stops a reminder from firing until it is resumed.
func (s *Service) Pause(ctx context.Context, id string) (Record, error) {
	now := s.clock.Now()
	return s.mutate(ctx, "paused", func(registry *Registry) (Record, error) {
		return registry.Pause(id, now)
	})
}

// Resume re-enables a paused reminder.
func (s *Service) Resume(ctx context.Context, id string) (Record, error) {
	now := s.clock.Now()
	return s.mutate(ctx, "resumed", func(registry *Registry) (Record, error) {
		return registry.Resume(id, now)
	})
}

// Delete removes a reminder.
func (s *Service) Delete(ctx context.Context, id string) (Record, error) {
	return s.mutate(ctx, "deleted", func(registry *Registry) (Record, error) {
		return registry.Delete(id)
	})
}

func (s *Service) mutate(ctx context.Context, verb string, fn func(*Registry) (Record, error)) (Record, error) {
	var result Record
	err := s.storage.Update(ctx, func(registry *Registry) error {
		var err error
		result, err = fn(registry)
		return err
	})
	if err != nil {
		return Record{}, err
	}

	s.logger.Info("reminder "+verb, zap.String("id", result.ID), zap.String("status", result.Status()))
	return result, nil
}

// Get returns the reminder named by an ID or unique ID prefix.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	registry, err := s.load(ctx)
	if err != nil {
		return Record{}, err
	}
	return registry.Get(id)
}

// List returns reminders matching filter ordered by next fire instant.
func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	registry, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return registry.List(filter), nil
}

// Due returns the reminders due now.
func (s *Service) Due(ctx context.Context) ([]Record, error) {
	registry, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return registry.Due(s.clock.Now()), nil
}

// Clean removes completed one-shot reminders and returns them.
func (s *Service) Clean(ctx context.Context) ([]Record, error) {
	var removed []Record
	err := s.storage.Update(ctx, func(registry *Registry) error {
		removed = registry.Clean()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("completed reminders cleaned", zap.Int("removed", len(removed)))
	return removed, nil
}

// Tags returns every tag in use with its reminder count.
func (s *Service) Tags(ctx context.Context) ([]TagCount, error) {
	registry, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return registry.Tags(), nil
}

func (s *Service) load(ctx context.Context) (*Registry, error) {
	records, err := s.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewRegistry(records), nil
}

// check runs struct validation and reports the first failing field.
func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}
	fe := fieldErrors[0]
	return &ValidationError{Field: fe.Field(), Reason: describeRule(fe)}
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "either a one-shot time or a recurrence is required"
	case "excluded_with":
		return "cannot be combined with a recurrence"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "failed " + fe.Tag()
	}
}

// resolveSchedule turns user input into a schedule: at through the
// time-expression resolver, cron through the recurrence translator.
func resolveSchedule(at, cron string, now time.Time) (*schedule.Spec, error) {
	if at != "" {
		t, err := schedule.Resolve(at, now)
		if err != nil {
			return nil, err
		}
		spec := schedule.OneShot(t)
		return &spec, nil
	}

	expression, err := schedule.Translate(cron)
	if err != nil {
		return nil, err
	}
	spec := schedule.Recurring(expression)
	return &spec, nil
}
