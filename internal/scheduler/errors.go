package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName is returned when a task name is empty.
	ErrEmptyName = errors.New("task name is empty")
	// ErrDuplicateName is returned when inserting a name that is already present.
	ErrDuplicateName = errors.New("task already exists")
	// ErrNotFound is returned when a named task is not present.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidPriority is returned for priorities that cannot be ordered (NaN).
	ErrInvalidPriority = errors.New("priority is not a number")
)

// TaskError reports a rejected operation on a named task.
type TaskError struct {
	Op   string // operation that was rejected
	Name string // task name
	Err  error  // one of the sentinel errors above
}

func (e *TaskError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %s", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *TaskError) Unwrap() error {
	return e.Err
}
