package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/viant/uitest/internal/clock"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/tracing"
	"golang.org/x/time/rate"
)

// Task is a unit of work the scheduler runs.
type Task interface {
	ID() string
	Label() string
	Run(ctx context.Context) error
}

// Resource is released once all tasks settled.
type Resource interface {
	Close(ctx context.Context) error
}

// Listener is notified once per settled task.
type Listener func(task Task, err error)

// Config represents scheduler configuration
type Config struct {
	// Limit is the maximum number of tasks in flight.
	Limit int `yaml:"limit" json:"limit"`
	// StallTimeout is the longest the drain phase waits for any completion.
	StallTimeout time.Duration `yaml:"stallTimeout" json:"stallTimeout"`
	// ProgressInterval throttles drain progress logs.
	ProgressInterval time.Duration `yaml:"progressInterval" json:"progressInterval"`
}

// DefaultStallTimeout is the sliding watchdog window.
const DefaultStallTimeout = 20 * time.Second

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Limit:            DefaultLimit(),
		StallTimeout:     DefaultStallTimeout,
		ProgressInterval: 5 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Limit < 1 {
		return fmt.Errorf("invalid limit: %d", c.Limit)
	}
	if c.StallTimeout <= 0 {
		return fmt.Errorf("invalid stall timeout: %v", c.StallTimeout)
	}
	return nil
}

// Limit derives the in-flight limit from the available parallelism.
func Limit(parallelism int) int {
	if limit := parallelism/2 + 1; limit > 1 {
		return limit
	}
	return 1
}

// DefaultLimit derives the limit from the number of CPUs.
func DefaultLimit() int {
	return Limit(runtime.NumCPU())
}

// Service runs tasks with bounded parallelism.
type Service struct {
	config    Config
	resource  Resource
	listeners []Listener
	log       logx.Logger
}

type completion struct {
	id  string
	err error
}

// run holds the state of a single Run call.
type run struct {
	queue       *Queue
	tasks       map[string]Task
	completions chan completion
	progress    *rate.Limiter
}

// Run admits tasks in order, keeping at most Limit of them in flight, and
// waits for all of them. Task errors are logged and reported to listeners;
// only a stall, a Fatal task error or ctx cancellation end the run early, in
// which case still-running tasks are abandoned. The resource is closed once
// after every task settled.
func (s *Service) Run(ctx context.Context, tasks []Task) (err error) {
	if len(tasks) == 0 {
		return ErrNoTasks
	}
	ctx, span := tracing.StartSpan(ctx, "scheduler.Run")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"tasks": fmt.Sprint(len(tasks)), "limit": fmt.Sprint(s.config.Limit)})

	r := &run{
		queue:       NewQueue(),
		tasks:       make(map[string]Task, len(tasks)),
		completions: make(chan completion, len(tasks)),
		progress:    rate.NewLimiter(rate.Every(s.config.ProgressInterval), 1),
	}
	for _, task := range tasks {
		for r.queue.Len() >= s.config.Limit {
			if err = s.await(ctx, r); err != nil {
				return err
			}
		}
		if !r.queue.Add(task.ID(), task.Label()) {
			return fmt.Errorf("%w: %v", ErrDuplicateTask, task.Label())
		}
		r.tasks[task.ID()] = task
		s.log.Debug("task admitted", logx.String("task", task.Label()), logx.Int("inFlight", r.queue.Len()))
		go s.execute(ctx, task, r.completions)
	}

	if err = s.drain(ctx, r); err != nil {
		return err
	}
	s.log.Debug("run completed", logx.Int("tasks", len(tasks)), logx.Int("highWater", r.queue.HighWater()))
	s.release(ctx)
	return nil
}

// await blocks until any in-flight task completes. Admission has no watchdog.
func (s *Service) await(ctx context.Context, r *run) error {
	select {
	case c := <-r.completions:
		return s.settle(r, c)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain waits for the remaining tasks, arming a fresh watchdog every iteration.
func (s *Service) drain(ctx context.Context, r *run) error {
	for r.queue.Len() > 0 {
		fired, stop := clock.After(s.config.StallTimeout)
		select {
		case c := <-r.completions:
			stop()
			if err := s.settle(r, c); err != nil {
				return err
			}
			if r.queue.Len() > 0 && r.progress.Allow() {
				s.log.Info("waiting for tasks", logx.Strings("remaining", r.queue.Labels()))
			}
		case <-fired:
			err := &StallError{Timeout: s.config.StallTimeout, Labels: r.queue.Labels()}
			s.log.Error("run stalled", logx.Strings("running", err.Labels), logx.Duration("timeout", err.Timeout))
			return err
		case <-ctx.Done():
			stop()
			return ctx.Err()
		}
	}
	return nil
}

func (s *Service) settle(r *run, c completion) error {
	task := r.tasks[c.id]
	elapsed := r.queue.Elapsed(c.id)
	if !r.queue.Remove(c.id) {
		s.log.Warn("task settled twice", logx.String("id", c.id))
		return nil
	}
	for _, listener := range s.listeners {
		listener(task, c.err)
	}
	if c.err == nil {
		s.log.Debug("task completed", logx.String("task", task.Label()), logx.Duration("elapsed", elapsed))
		return nil
	}
	if IsFatal(c.err) {
		s.log.Error("task failed fatally", logx.String("task", task.Label()), logx.Err(c.err))
		return fmt.Errorf("%v: %w", task.Label(), c.err)
	}
	s.log.Warn("task failed", logx.String("task", task.Label()), logx.Err(c.err))
	return nil
}

func (s *Service) execute(ctx context.Context, task Task, done chan<- completion) {
	var err error
	ctx, span := tracing.StartSpan(ctx, "scheduler.task")
	span.WithAttributes(map[string]string{"task.id": task.ID(), "task.label": task.Label()})
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.log.Error("task.panic", logx.String("task", task.Label()), logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
		}
		tracing.EndSpan(span, err)
		done <- completion{id: task.ID(), err: err}
	}()
	err = task.Run(ctx)
}

func (s *Service) release(ctx context.Context) {
	if s.resource == nil {
		return
	}
	if err := s.resource.Close(ctx); err != nil {
		s.log.Warn("failed to release shared resource", logx.Err(err))
	}
}

// Limit returns the configured in-flight limit.
func (s *Service) Limit() int {
	return s.config.Limit
}

// New creates a scheduler
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig(), log: logx.Nop()}
	for _, opt := range options {
		opt(s)
	}
	if s.config.ProgressInterval <= 0 {
		s.config.ProgressInterval = DefaultConfig().ProgressInterval
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
