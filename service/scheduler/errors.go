package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoTasks is returned when Run is called with an empty task list.
	ErrNoTasks = errors.New("scheduler: no tasks")
	// ErrDuplicateTask is returned when two tasks share an id.
	ErrDuplicateTask = errors.New("scheduler: duplicate task")
)

// StallError reports that no in-flight task completed within the stall timeout.
type StallError struct {
	Timeout time.Duration
	// Labels of the tasks still running, sorted.
	Labels []string
}

func (e *StallError) Error() string {
	return fmt.Sprintf("no task completed within %v, still running: %s", e.Timeout, strings.Join(e.Labels, ", "))
}

// Fatal marks a task error as an infrastructure failure that must stop the run.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return fatalError{err: err}
}

// IsFatal reports whether err carries the Fatal marker.
func IsFatal(err error) bool {
	var f fatalError
	return errors.As(err, &f)
}

type fatalError struct{ err error }

func (e fatalError) Error() string { return fmt.Sprintf("fatal: %v", e.err) }
func (e fatalError) Unwrap() error { return e.err }
