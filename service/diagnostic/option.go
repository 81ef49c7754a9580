package diagnostic

import (
	"github.com/viant/afs"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/service/snapshot"
)

// Option configures the diagnostic service.
type Option func(*Service)

// WithConfig sets the configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithFilters sets the command line filter tokens
func WithFilters(filters []string) Option {
	return func(s *Service) {
		s.filters = filters
	}
}

// WithBless enables blessing of the compact display golden file
func WithBless(bless bool) Option {
	return func(s *Service) {
		s.config.Bless = bless
	}
}

// WithFs sets the file system
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
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
