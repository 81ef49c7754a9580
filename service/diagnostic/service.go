// Package diagnostic holds the checks that replay the interpreter once over a
// filtered set of scripts and inspect its console output: the compact display
// format, the names reported for failed tests and the failure backtrace. It
// also checks the screenshot artifacts some tests must produce.
package diagnostic

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/uitest/internal/console"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/report"
	"github.com/viant/uitest/service/backtrace"
	"github.com/viant/uitest/service/browser"
	"github.com/viant/uitest/service/discovery"
	"github.com/viant/uitest/service/interpreter"
	"github.com/viant/uitest/service/snapshot"
)

const (
	failedTestMarker = "======== "
	failedTestFence  = "========"
)

// Check is one diagnostic suite.
type Check func(ctx context.Context, suite *report.Suite) error

// Service runs the diagnostic suites.
type Service struct {
	config      Config
	filters     []string
	fs          afs.Service
	launcher    browser.Launcher
	interpreter interpreter.Interpreter
	snapshot    *snapshot.Service
	log         logx.Logger
}

// Options builds the interpreter options of a filtered folder run.
func (s *Service) Options(filter string) *interpreter.Options {
	options := &interpreter.Options{
		TestFolder:    s.config.TestFolder,
		DisplayFormat: interpreter.DisplayFormatCompact,
		Filter:        filter,
		ShowLogs:      true,
	}
	for _, variable := range s.config.Variables {
		options.WithVariable(variable.Name, variable.Value)
	}
	return options
}

// RunAll runs every suite selected by the filters, in order.
func (s *Service) RunAll(ctx context.Context, suite *report.Suite) error {
	checks := []struct {
		name  string
		check Check
	}{
		{CompactDisplayFormat, s.CompactDisplayFormat},
		{FailedTestName, s.FailedTestName},
		{Backtrace, s.Backtrace},
	}
	for _, item := range checks {
		if err := s.RunIfMatches(ctx, suite, item.name, item.check); err != nil {
			return err
		}
	}
	return nil
}

// RunIfMatches runs check in a child suite named name when the filters select it.
func (s *Service) RunIfMatches(ctx context.Context, suite *report.Suite, name string, check Check) error {
	if !discovery.Matches(s.filters, name) {
		console.Printf("`%s` test filtered out", name)
		return nil
	}
	return suite.Run(name, func(child *report.Suite) error {
		return check(ctx, child)
	})
}

// CheckArtifacts verifies that selected tests left their artifact behind and
// removes it.
func (s *Service) CheckArtifacts(ctx context.Context, suite *report.Suite) error {
	for _, artifact := range s.config.Artifacts {
		if !discovery.Matches(s.filters, artifact.Test) {
			continue
		}
		exists, err := s.fs.Exists(ctx, artifact.File)
		if err != nil {
			return fmt.Errorf("failed to check %v: %w", artifact.File, err)
		}
		if !exists {
			suite.AddErrorf("`%s` should have generated a `%s` file!", artifact.Test, artifact.File)
			continue
		}
		if err = s.fs.Delete(ctx, artifact.File); err != nil {
			return fmt.Errorf("failed to delete %v: %w", artifact.File, err)
		}
	}
	return nil
}

// CompactDisplayFormat compares or blesses the compact display output.
func (s *Service) CompactDisplayFormat(ctx context.Context, suite *report.Suite) error {
	output, ok := s.capture(ctx, suite, s.config.CompactFilter)
	if !ok {
		return nil
	}
	outcome, err := s.snapshot.URLOnly().CompareOrBless(ctx, output, s.config.CompactOutput, s.config.Bless)
	if err != nil {
		return err
	}
	switch {
	case outcome.Mismatch():
		suite.AddError(outcome.Message())
	case !outcome.Blessed:
		suite.AddSuccess()
	}
	return nil
}

// FailedTestName checks that only the expected scripts are reported as failed.
func (s *Service) FailedTestName(ctx context.Context, suite *report.Suite) error {
	output, ok := s.capture(ctx, suite, s.config.FailedFilter)
	if !ok {
		return nil
	}
	failures := 0
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, failedTestMarker) {
			continue
		}
		failures++
		name := strings.TrimSpace(strings.Split(line, failedTestFence)[1])
		if s.isExpectedFailure(name) {
			suite.AddSuccess()
			continue
		}
		suite.AddErrorf("Unexpected test name: `%s`", name)
	}
	switch {
	case failures == 0:
		suite.AddErrorf("No failed tests found in `%s`, full output:\n%s", FailedTestName, output)
	case suite.TotalErrors() != 0:
		console.Printf("`%s` failed, full output:\n%s", FailedTestName, output)
	}
	return nil
}

func (s *Service) isExpectedFailure(name string) bool {
	for _, suffix := range s.config.FailedTests {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Backtrace validates the inclusion chain reported for a failure in an included file.
func (s *Service) Backtrace(ctx context.Context, suite *report.Suite) error {
	output, ok := s.capture(ctx, suite, s.config.BacktraceFilter)
	if !ok {
		return nil
	}
	result := backtrace.Validate(output, s.config.BacktraceChain)
	for _, message := range result.Errors {
		suite.AddError(message)
	}
	if result.Passed() {
		suite.AddSuccess()
		return nil
	}
	if !result.Missing {
		console.Printf("test failed, output:\n%s", output)
	}
	return nil
}

// capture runs the interpreter over the filtered folder with its own browser
// and returns everything printed meanwhile. A launch or interpreter failure is
// recorded as one error together with the captured output.
func (s *Service) capture(ctx context.Context, suite *report.Suite, filter string) (string, bool) {
	b, err := s.launcher.Launch(ctx)
	if err != nil {
		suite.AddErrorf("%v\n\nOutput: ", err)
		return "", false
	}
	shared := browser.NewShared(b, s.log)
	options := s.Options(filter)
	output, err := console.Capture(func() error {
		_, err := s.interpreter.Run(ctx, shared, options)
		return err
	})
	_ = shared.Close(ctx)
	if err != nil {
		s.log.Warn("diagnostic run failed", logx.String("filter", filter), logx.Err(err))
		suite.AddErrorf("%v\n\nOutput: %s", err, output)
		return output, false
	}
	return output, true
}

// New creates a diagnostic service
func New(launcher browser.Launcher, interp interpreter.Interpreter, options ...Option) *Service {
	ret := &Service{config: DefaultConfig(), launcher: launcher, interpreter: interp, log: logx.Nop()}
	for _, opt := range options {
		opt(ret)
	}
	ret.config.Init()
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.snapshot == nil {
		ret.snapshot = snapshot.New(snapshot.WithFs(ret.fs), snapshot.WithLogger(ret.log))
	}
	return ret
}
