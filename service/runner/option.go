package runner

import (
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/service/interpreter"
	"github.com/viant/uitest/service/snapshot"
)

// Option configures the runner.
type Option func(*Service)

// WithConfig sets the runner configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithBless enables blessing
func WithBless(bless bool) Option {
	return func(s *Service) {
		s.config.Bless = bless
	}
}

// WithInterpreter sets the interpreter
func WithInterpreter(interpreter interpreter.Interpreter) Option {
	return func(s *Service) {
		s.interpreter = interpreter
	}
}

// WithSnapshot sets the snapshot store
func WithSnapshot(snapshot *snapshot.Service) Option {
	return func(s *Service) {
		s.snapshot = snapshot
	}
}

// WithLogger sets the logger
func WithLogger(logger logx.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}
