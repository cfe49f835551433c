package schedule

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind names the active variant of a Spec.
type Kind string

const (
	KindOneShot   Kind = "one_shot"
	KindRecurring Kind = "recurring"
)

// Spec is the schedule of a reminder: either a single instant or a cron
// expression, never both. The zero Spec is invalid. Construct with
// OneShot or Recurring.
type Spec struct {
	kind   Kind
	fireAt time.Time
	cron   string
}

// OneShot returns a schedule that fires once at t.
func OneShot(t time.Time) Spec {
	return Spec{kind: KindOneShot, fireAt: t}
}

// Recurring returns a schedule governed by a six-field cron expression.
func Recurring(expression string) Spec {
	return Spec{kind: KindRecurring, cron: expression}
}

func (s Spec) Kind() Kind { return s.kind }

// FireAt returns the instant of a one-shot schedule.
func (s Spec) FireAt() (time.Time, bool) {
	return s.fireAt, s.kind == KindOneShot
}

// Cron returns the expression of a recurring schedule.
func (s Spec) Cron() (string, bool) {
	return s.cron, s.kind == KindRecurring
}

func (s Spec) IsRecurring() bool { return s.kind == KindRecurring }

// Equal reports whether both schedules fire at the same instants.
func (s Spec) Equal(other Spec) bool {
	return s.kind == other.kind && s.fireAt.Equal(other.fireAt) && s.cron == other.cron
}

// Validate checks that exactly one variant is populated and, for
// recurring schedules, that the expression parses.
func (s Spec) Validate() error {
	switch s.kind {
	case KindOneShot:
		if s.fireAt.IsZero() || s.cron != "" {
			return fmt.Errorf("one-shot schedule needs a fire time and no cron expression")
		}
	case KindRecurring:
		if !s.fireAt.IsZero() {
			return fmt.Errorf("recurring schedule must not carry a fire time")
		}
		if _, err := ParseCron(s.cron); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown schedule kind %q", s.kind)
	}
	return nil
}

// Next returns the next fire instant for a schedule evaluated at now.
// A one-shot schedule always answers its own instant.
func (s Spec) Next(now time.Time) (time.Time, error) {
	switch s.kind {
	case KindOneShot:
		return s.fireAt, nil
	case KindRecurring:
		cron, err := ParseCron(s.cron)
		if err != nil {
			return time.Time{}, err
		}
		next, err := cron.Next(now)
		if err != nil {
			return time.Time{}, parseErrorf(s.cron, "schedule never fires")
		}
		return next, nil
	default:
		return time.Time{}, fmt.Errorf("unknown schedule kind %q", s.kind)
	}
}

func (s Spec) String() string {
	switch s.kind {
	case KindOneShot:
		return "at " + s.fireAt.Format(time.RFC3339)
	case KindRecurring:
		return "cron " + s.cron
	default:
		return "invalid"
	}
}

// specWire is the serialized form. Instants are RFC 3339 with offset.
type specWire struct {
	Kind   Kind       `json:"kind" yaml:"kind"`
	FireAt *time.Time `json:"fire_at,omitempty" yaml:"fire_at,omitempty"`
	Cron   string     `json:"cron,omitempty" yaml:"cron,omitempty"`
}

func (s Spec) wire() specWire {
	w := specWire{Kind: s.kind, Cron: s.cron}
	if s.kind == KindOneShot {
		at := s.fireAt
		w.FireAt = &at
	}
	return w
}

func (w specWire) spec() (Spec, error) {
	var s Spec
	switch w.Kind {
	case KindOneShot:
		if w.FireAt == nil {
			return Spec{}, fmt.Errorf("one-shot schedule without fire_at")
		}
		s = OneShot(*w.FireAt)
		if w.Cron != "" {
			s.cron = w.Cron
		}
	case KindRecurring:
		s = Recurring(w.Cron)
		if w.FireAt != nil {
			s.fireAt = *w.FireAt
		}
	default:
		s = Spec{kind: w.Kind}
	}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

func (s Spec) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

func (s *Spec) UnmarshalJSON(data []byte) error {
	var w specWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := w.spec()
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

func (s Spec) MarshalYAML() (any, error) {
	return s.wire(), nil
}

func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	var w specWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	decoded, err := w.spec()
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}
