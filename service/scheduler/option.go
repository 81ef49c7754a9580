package scheduler

import (
	"time"

	"github.com/viant/uitest/internal/logx"
)

// Option configures the scheduler.
type Option func(*Service)

// WithConfig sets the scheduler configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLimit sets the in-flight limit
func WithLimit(limit int) Option {
	return func(s *Service) {
		s.config.Limit = limit
	}
}

// WithStallTimeout sets the drain watchdog window
func WithStallTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.config.StallTimeout = timeout
	}
}

// WithResource sets the shared resource released after a completed run
func WithResource(resource Resource) Option {
	return func(s *Service) {
		s.resource = resource
	}
}

// WithListener registers a callback invoked once per settled task.
func WithListener(listener Listener) Option {
	return func(s *Service) {
		if listener != nil {
			s.listeners = append(s.listeners, listener)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logx.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}
