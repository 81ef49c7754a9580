package uitest

import (
	"context"
	"fmt"
	"os"

	"github.com/viant/afs"
	"github.com/viant/toolbox"
	"github.com/viant/uitest/internal/console"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/report"
	"github.com/viant/uitest/service/browser"
	"github.com/viant/uitest/service/diagnostic"
	"github.com/viant/uitest/service/discovery"
	"github.com/viant/uitest/service/interpreter"
	"github.com/viant/uitest/service/runner"
	"github.com/viant/uitest/service/scheduler"
	"github.com/viant/uitest/service/snapshot"
	"github.com/viant/uitest/tracing"
)

const (
	// RootSuite names the suite holding every check.
	RootSuite = "ui items"
	// TestSuite names the suite of the discovered scripts.
	TestSuite = "ui-test"
)

// BlessEnvKeys enable blessing when set to a true value.
var BlessEnvKeys = []string{"UITEST_BLESS", "npm_config_bless"}

// BlessFromEnv reports whether any of BlessEnvKeys is true.
func BlessFromEnv() bool {
	for _, key := range BlessEnvKeys {
		if toolbox.AsBoolean(os.Getenv(key)) {
			return true
		}
	}
	return false
}

// Service represents the UI test harness
type Service struct {
	config      *Config
	fs          afs.Service
	launcher    browser.Launcher
	interpreter interpreter.Interpreter
	snapshot    *snapshot.Service
	discovery   *discovery.Service
	diagnostic  *diagnostic.Service
	currentDir  string
	filters     []string
	bless       *bool
	progress    func(report.Delta)
	log         logx.Logger
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Check runs the discovered scripts, then the artifact checks and the
// diagnostic suites. Check failures are tallied in the returned suite; an
// error means the run was cut short, by a stall or an unavailable browser.
func (s *Service) Check(ctx context.Context) (suite *report.Suite, err error) {
	ctx, span := tracing.StartSpan(ctx, "uitest.Check")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"test.folder": s.config.TestFolder, "bless": fmt.Sprint(s.config.Bless)})

	suite = report.New(RootSuite)
	if s.progress != nil {
		suite.OnChange(s.progress)
	}
	defer suite.End()
	if err = suite.Run(TestSuite, func(child *report.Suite) error {
		return s.RunTests(ctx, child)
	}); err != nil {
		return suite, err
	}
	if err = s.diagnostic.CheckArtifacts(ctx, suite); err != nil {
		return suite, err
	}
	err = s.diagnostic.RunAll(ctx, suite)
	return suite, err
}

// RunTests discovers the selected scripts and runs them on one shared browser.
func (s *Service) RunTests(ctx context.Context, suite *report.Suite) error {
	specs, err := s.discovery.Discover(ctx, s.config.TestFolder, s.filters)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		console.Println("All UI tests filtered out, moving to next tests")
		return nil
	}
	b, err := s.launcher.Launch(ctx)
	if err != nil {
		return err
	}
	shared := browser.NewShared(b, s.log)
	testRunner, err := runner.New(suite, shared,
		runner.WithConfig(runner.Config{
			Variables:     s.config.ScriptVariables(),
			MessageFormat: interpreter.MessageFormatJSON,
			Bless:         s.config.Bless,
		}),
		runner.WithInterpreter(s.interpreter),
		runner.WithSnapshot(s.snapshot),
		runner.WithLogger(s.log))
	if err != nil {
		_ = shared.Close(ctx)
		return err
	}
	sched, err := scheduler.New(
		scheduler.WithLimit(s.config.Limit()),
		scheduler.WithStallTimeout(s.config.StallTimeout),
		scheduler.WithResource(shared),
		scheduler.WithLogger(s.log))
	if err != nil {
		_ = shared.Close(ctx)
		return err
	}
	s.log.Info("running ui tests", logx.Int("tests", len(specs)), logx.Int("limit", sched.Limit()), logx.Bool("bless", s.config.Bless))
	if err = sched.Run(ctx, testRunner.Tasks(ctx, specs)); err != nil {
		// abandoned tasks see a closed browser from here on
		_ = shared.Close(ctx)
		return err
	}
	return nil
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	s.config.Init()
	if s.bless != nil {
		s.config.Bless = *s.bless
	}
	s.config.Diagnostic.Bless = s.config.Bless
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.snapshot == nil {
		s.snapshot = snapshot.New(snapshot.WithFs(s.fs), snapshot.WithCurrentDir(s.currentDir), snapshot.WithLogger(s.log))
	}
	if s.launcher == nil {
		s.launcher = browser.NewLauncher(s.config.Browser, s.log)
	}
	if s.interpreter == nil {
		s.interpreter = interpreter.NewShell(s.config.Interpreter.Command, s.config.InterpreterTimeout(), s.log)
	}
	s.discovery = discovery.New(
		discovery.WithFs(s.fs),
		discovery.WithScriptExt(s.config.ScriptExt),
		discovery.WithLogger(s.log))
	s.diagnostic = diagnostic.New(s.launcher, s.interpreter,
		diagnostic.WithConfig(s.config.Diagnostic),
		diagnostic.WithFilters(s.filters),
		diagnostic.WithBless(s.config.Bless),
		diagnostic.WithFs(s.fs),
		diagnostic.WithSnapshot(s.snapshot),
		diagnostic.WithLogger(s.log))
}

// New creates the harness service
func New(options ...Option) *Service {
	ret := &Service{log: logx.Nop()}
	ret.init(options)
	return ret
}
