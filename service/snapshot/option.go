package snapshot

import (
	"github.com/viant/afs"
	"github.com/viant/uitest/internal/logx"
)

// Option customises the snapshot service.
type Option func(*Service)

// WithFs sets the storage service used for golden files.
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithCurrentDir sets the working directory rewritten to CurrentDirToken.
func WithCurrentDir(dir string) Option {
	return func(s *Service) {
		s.normalizer = NewNormalizer(dir)
	}
}

// WithContextLines sets the unified diff context size.
func WithContextLines(n int) Option {
	return func(s *Service) {
		s.contextLines = n
	}
}

// WithLogger sets the logger.
func WithLogger(log logx.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}
