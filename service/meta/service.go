// Package meta loads YAML assets, such as the harness configuration, through
// afs with ${env.KEY} expansion applied before decoding.
package meta

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Service loads YAML assets.
type Service struct {
	fs afs.Service
}

// Load decodes the YAML asset at URL into target.
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to download %v: %w", URL, err)
	}
	if err = yaml.Unmarshal([]byte(ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	return nil
}

// New creates a meta service
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}
