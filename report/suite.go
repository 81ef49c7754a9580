package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/viant/uitest/internal/clock"
	"github.com/viant/uitest/internal/console"
)

// Delta is an incremental change of a suite's counters.
type Delta struct {
	Suite     string
	Errors    int
	Successes int
	// Message holds the recorded error, if any.
	Message string
}

// Suite groups check outcomes.
type Suite struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration

	errors    []string
	successes int
	children  []*Suite
	parent    *Suite

	mux      sync.Mutex
	onChange func(Delta)
}

// Summary is a read-only copy of a suite tree.
type Summary struct {
	Name      string        `json:"name" yaml:"name"`
	Errors    []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
	Successes int           `json:"successes" yaml:"successes"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Children  []Summary     `json:"children,omitempty" yaml:"children,omitempty"`
}

// AddError records a failed check and prints its detail.
func (s *Suite) AddError(message string) {
	console.Println(message)
	s.update(Delta{Errors: 1, Message: message})
}

// RecordError records a failed check whose detail the caller prints itself.
func (s *Suite) RecordError(message string) {
	s.update(Delta{Errors: 1, Message: message})
}

// AddErrorf formats and records a failed check.
func (s *Suite) AddErrorf(format string, args ...interface{}) {
	s.AddError(fmt.Sprintf(format, args...))
}

// AddSuccess records a passed check.
func (s *Suite) AddSuccess() {
	s.update(Delta{Successes: 1})
}

func (s *Suite) update(d Delta) {
	if s == nil {
		return
	}
	d.Suite = s.Name
	s.mux.Lock()
	if d.Errors > 0 {
		s.errors = append(s.errors, d.Message)
	}
	s.successes += d.Successes
	s.mux.Unlock()
	if cb := s.callback(); cb != nil {
		cb(d)
	}
}

// callback returns the closest registered onChange, walking up the tree.
func (s *Suite) callback() func(Delta) {
	for suite := s; suite != nil; suite = suite.parent {
		suite.mux.Lock()
		cb := suite.onChange
		suite.mux.Unlock()
		if cb != nil {
			return cb
		}
	}
	return nil
}

// OnChange registers a callback invoked after every recorded outcome of this
// suite or its descendants without their own callback.
func (s *Suite) OnChange(cb func(Delta)) {
	s.mux.Lock()
	s.onChange = cb
	s.mux.Unlock()
}

// Errors returns the suite's own error messages.
func (s *Suite) Errors() []string {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]string(nil), s.errors...)
}

// TotalErrors counts errors of the suite and all descendants.
func (s *Suite) TotalErrors() int {
	s.mux.Lock()
	total := len(s.errors)
	children := append([]*Suite(nil), s.children...)
	s.mux.Unlock()
	for _, child := range children {
		total += child.TotalErrors()
	}
	return total
}

// TotalSuccesses counts successes of the suite and all descendants.
func (s *Suite) TotalSuccesses() int {
	s.mux.Lock()
	total := s.successes
	children := append([]*Suite(nil), s.children...)
	s.mux.Unlock()
	for _, child := range children {
		total += child.TotalSuccesses()
	}
	return total
}

// Start opens a child suite.
func (s *Suite) Start(name string) *Suite {
	child := &Suite{Name: name, StartedAt: clock.Now(), parent: s}
	s.mux.Lock()
	s.children = append(s.children, child)
	s.mux.Unlock()
	console.Printf("=> Starting %s...", name)
	return child
}

// End closes the suite and prints its tally.
func (s *Suite) End() {
	s.mux.Lock()
	s.Duration = clock.Since(s.StartedAt)
	s.mux.Unlock()
	console.Printf("<= %s: %d succeeded, %d failed (%v)", s.Name, s.TotalSuccesses(), s.TotalErrors(), s.Duration.Round(time.Millisecond))
}

// Run executes fn inside a new child suite.
func (s *Suite) Run(name string, fn func(suite *Suite) error) error {
	child := s.Start(name)
	defer child.End()
	return fn(child)
}

// Summary returns a copy of the suite tree.
func (s *Suite) Summary() Summary {
	s.mux.Lock()
	summary := Summary{
		Name:      s.Name,
		Errors:    append([]string(nil), s.errors...),
		Successes: s.successes,
		Duration:  s.Duration,
	}
	children := append([]*Suite(nil), s.children...)
	s.mux.Unlock()
	for _, child := range children {
		summary.Children = append(summary.Children, child.Summary())
	}
	return summary
}

// Render writes an indented tally of the suite tree.
func (s *Suite) Render(w io.Writer) error {
	return render(w, s, 0)
}

func render(w io.Writer, s *Suite, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%s: %d succeeded, %d failed\n", strings.Repeat("  ", depth), s.Name, s.TotalSuccesses(), s.TotalErrors()); err != nil {
		return err
	}
	s.mux.Lock()
	children := append([]*Suite(nil), s.children...)
	s.mux.Unlock()
	for _, child := range children {
		if err := render(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// New creates a root suite.
func New(name string) *Suite {
	return &Suite{Name: name, StartedAt: clock.Now()}
}
