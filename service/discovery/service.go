// Package discovery lists the test scripts of a folder and applies the
// command line filter tokens.
package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/model"
)

// Service discovers test scripts.
type Service struct {
	fs        afs.Service
	scriptExt string
	log       logx.Logger
}

// Matches reports whether name is selected: an empty filter list selects
// everything, otherwise any token must be a substring of name.
func Matches(filters []string, name string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, filter := range filters {
		if strings.Contains(name, filter) {
			return true
		}
	}
	return false
}

// Discover returns the specs of the scripts directly under folder whose file
// name matches filters, sorted by path.
func (s *Service) Discover(ctx context.Context, folder string, filters []string) ([]*model.Spec, error) {
	objects, err := s.fs.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list test folder %v: %w", folder, err)
	}
	var specs []*model.Spec
	skipped := 0
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), s.scriptExt) {
			continue
		}
		if !Matches(filters, object.Name()) {
			skipped++
			continue
		}
		specs = append(specs, model.NewSpec(strings.TrimRight(folder, "/")+"/"+object.Name(), s.scriptExt))
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Path < specs[j].Path })
	s.log.Debug("tests discovered", logx.String("folder", folder), logx.Int("selected", len(specs)), logx.Int("filteredOut", skipped))
	return specs, nil
}

// Option configures discovery.
type Option func(*Service)

// WithFs sets the file system
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithScriptExt sets the script extension
func WithScriptExt(ext string) Option {
	return func(s *Service) {
		s.scriptExt = ext
	}
}

// WithLogger sets the logger
func WithLogger(logger logx.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}

// New creates a discovery service
func New(options ...Option) *Service {
	ret := &Service{scriptExt: model.ScriptExt, log: logx.Nop()}
	for _, opt := range options {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	return ret
}
