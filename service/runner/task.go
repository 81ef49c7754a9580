package runner

import (
	"context"
	"strings"
	"sync"

	"github.com/viant/uitest/model"
)

// Task is one test script scheduled for execution.
type Task struct {
	id      string
	spec    *model.Spec
	service *Service

	mux sync.Mutex
	log strings.Builder
}

// ID returns the task id.
func (t *Task) ID() string { return t.id }

// Label returns the script path.
func (t *Task) Label() string { return t.spec.Label() }

// Spec returns the script spec.
func (t *Task) Spec() *model.Spec { return t.spec }

// Run executes the script.
func (t *Task) Run(ctx context.Context) error {
	return t.service.Execute(ctx, t)
}

// Log returns the buffered messages.
func (t *Task) Log() string {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.log.String()
}

// Logln buffers one message line.
func (t *Task) Logln(line string) {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.log.WriteString(line)
	t.log.WriteString("\n")
}
