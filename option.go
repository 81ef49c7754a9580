package uitest

import (
	"github.com/viant/afs"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/report"
	"github.com/viant/uitest/service/browser"
	"github.com/viant/uitest/service/interpreter"
	"github.com/viant/uitest/service/snapshot"
)

// Option configures the harness service.
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithFs sets the file system used for scripts, golden files and artifacts
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithLauncher sets the browser launcher
func WithLauncher(launcher browser.Launcher) Option {
	return func(s *Service) {
		s.launcher = launcher
	}
}

// WithInterpreter sets the script interpreter
func WithInterpreter(interp interpreter.Interpreter) Option {
	return func(s *Service) {
		s.interpreter = interp
	}
}

// WithSnapshot sets the golden file store
func WithSnapshot(snapshot *snapshot.Service) Option {
	return func(s *Service) {
		s.snapshot = snapshot
	}
}

// WithCurrentDir sets the directory rewritten to $CURRENT_DIR in golden files
func WithCurrentDir(dir string) Option {
	return func(s *Service) {
		s.currentDir = dir
	}
}

// WithFilters sets the filter tokens selecting scripts and suites
func WithFilters(filters ...string) Option {
	return func(s *Service) {
		s.filters = append(s.filters, filters...)
	}
}

// WithBless overrides the configured bless mode
func WithBless(bless bool) Option {
	return func(s *Service) {
		s.bless = &bless
	}
}

// WithProgress registers a callback invoked after every recorded check outcome
func WithProgress(fn func(delta report.Delta)) Option {
	return func(s *Service) {
		s.progress = fn
	}
}

// WithLogger sets the logger
func WithLogger(logger logx.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}
