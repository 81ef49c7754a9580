// Package snapshot verifies test output against golden files stored next to
// each script, or blesses new golden files.
//
// Golden files are read and written through afs, so any supported storage
// (local file system, mem:// in tests) can back them. The service holds no
// mutable state across calls, so concurrent use on disjoint golden paths is safe.
package snapshot

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/uitest/internal/console"
	"github.com/viant/uitest/internal/logx"
)

// Outcome describes the result of a compare-or-bless request.
type Outcome struct {
	GoldenPath string
	// Blessed is set when the golden file was overwritten instead of compared.
	Blessed  bool
	Match    bool
	Expected string
	Actual   string
	Diff     string
	Stats    DiffStats
}

// Mismatch reports whether the outcome should be recorded as an assertion error.
func (o *Outcome) Mismatch() bool {
	return o != nil && !o.Blessed && !o.Match
}

// Message renders the mismatch for the aggregate report.
func (o *Outcome) Message() string {
	if !o.Mismatch() {
		return ""
	}
	if o.Diff == "" {
		return fmt.Sprintf("`%s` mismatch:\nexpected: %q\nactual: %q", o.GoldenPath, o.Expected, o.Actual)
	}
	return fmt.Sprintf("`%s` mismatch (+%d ~%d -%d):\n%s", o.GoldenPath, o.Stats.Added, o.Stats.Changed, o.Stats.Deleted, o.Diff)
}

// Service loads, verifies and blesses golden files.
type Service struct {
	fs           afs.Service
	normalizer   *Normalizer
	urlOnly      bool
	contextLines int
	log          logx.Logger
}

// MissingText is the expected content used when a golden file cannot be read.
func MissingText(goldenPath string) string {
	return fmt.Sprintf("Cannot open file `%s`", goldenPath)
}

// Load returns the golden file content; any read failure yields MissingText.
func (s *Service) Load(ctx context.Context, goldenPath string) string {
	data, err := s.fs.DownloadWithURL(ctx, goldenPath)
	if err != nil {
		return MissingText(goldenPath)
	}
	return string(data)
}

// CompareOrBless normalizes actual, then either blesses it into goldenPath or
// compares it with the golden file content.
func (s *Service) CompareOrBless(ctx context.Context, actual, goldenPath string, bless bool) (*Outcome, error) {
	expected := ""
	if !bless {
		expected = s.Load(ctx, goldenPath)
	}
	return s.Verify(ctx, actual, expected, goldenPath, bless)
}

// Verify is CompareOrBless with an already loaded expected value.
func (s *Service) Verify(ctx context.Context, actual, expected, goldenPath string, bless bool) (*Outcome, error) {
	normalized := s.normalize(actual)
	outcome := &Outcome{GoldenPath: goldenPath, Expected: expected, Actual: normalized}
	if bless {
		if err := s.bless(ctx, goldenPath, normalized); err != nil {
			return nil, err
		}
		outcome.Blessed = true
		return outcome, nil
	}
	outcome.Match = normalized == expected
	if outcome.Match {
		return outcome, nil
	}
	diff, stats, err := GenerateDiff(expected, normalized, goldenPath, s.contextLines)
	if err != nil {
		s.log.Warn("snapshot.diff failed", logx.String("golden", goldenPath), logx.Err(err))
	}
	outcome.Diff = diff
	outcome.Stats = stats
	return outcome, nil
}

func (s *Service) bless(ctx context.Context, goldenPath, text string) error {
	if err := s.fs.Upload(ctx, goldenPath, 0644, strings.NewReader(text)); err != nil {
		return fmt.Errorf("failed to bless %v: %w", goldenPath, err)
	}
	console.Printf("Blessed `%s`", goldenPath)
	s.log.Debug("snapshot.blessed", logx.String("golden", goldenPath), logx.Int("bytes", len(text)))
	return nil
}

// URLOnly returns a copy of the service that rewrites only file URLs, leaving
// backquoted paths as printed.
func (s *Service) URLOnly() *Service {
	ret := *s
	ret.urlOnly = true
	return &ret
}

func (s *Service) normalize(text string) string {
	if s.urlOnly {
		return s.normalizer.NormalizeURL(text)
	}
	return s.normalizer.Normalize(text)
}

// New creates a snapshot service.
func New(options ...Option) *Service {
	ret := &Service{contextLines: 3}
	for _, opt := range options {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.normalizer == nil {
		ret.normalizer = NewNormalizer("")
	}
	return ret
}
