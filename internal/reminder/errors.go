package reminder

import "fmt"

// NotFoundError reports an ID or ID prefix that does not name exactly one
// reminder. Matches is greater than one when the prefix is ambiguous.
type NotFoundError struct {
	ID      string
	Matches int
}

func (e *NotFoundError) Error() string {
	if e.Matches > 1 {
		return fmt.Sprintf("ambiguous ID %q: matches %d reminders, use more characters", e.ID, e.Matches)
	}
	return fmt.Sprintf("reminder %q not found", e.ID)
}

// PersistenceError wraps a failure to read or write reminder storage.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
