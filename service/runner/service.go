package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/uitest/internal/console"
	"github.com/viant/uitest/internal/idgen"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/model"
	"github.com/viant/uitest/report"
	"github.com/viant/uitest/service/browser"
	"github.com/viant/uitest/service/interpreter"
	"github.com/viant/uitest/service/scheduler"
	"github.com/viant/uitest/service/snapshot"
	"github.com/viant/uitest/tracing"
)

// Config represents per test interpreter settings
type Config struct {
	Variables     []interpreter.Variable `yaml:"variables,omitempty" json:"variables,omitempty"`
	MessageFormat string                 `yaml:"messageFormat,omitempty" json:"messageFormat,omitempty"`
	Bless         bool                   `yaml:"bless,omitempty" json:"bless,omitempty"`
}

// DefaultVariables are the substitutions every test script gets.
func DefaultVariables() []interpreter.Variable {
	return []interpreter.Variable{
		{Name: "DOC_PATH", Value: "tests/html_files"},
		{Name: "WINDOWS_PATH", Value: `C:\a\b`},
	}
}

// DefaultConfig returns the default runner configuration
func DefaultConfig() Config {
	return Config{Variables: DefaultVariables(), MessageFormat: interpreter.MessageFormatJSON}
}

// Service executes test tasks.
type Service struct {
	config      Config
	interpreter interpreter.Interpreter
	snapshot    *snapshot.Service
	browser     browser.Browser
	suite       *report.Suite
	log         logx.Logger
}

// Options builds the interpreter options for one script.
func (s *Service) Options(scriptPath string) *interpreter.Options {
	options := &interpreter.Options{TestFile: scriptPath, MessageFormat: s.config.MessageFormat}
	for _, variable := range s.config.Variables {
		options.WithVariable(variable.Name, variable.Value)
	}
	return options
}

// Task wraps spec into a scheduler task, loading its expected output unless blessing.
func (s *Service) Task(ctx context.Context, spec *model.Spec) *Task {
	if !s.config.Bless && spec.Expected == "" {
		spec.Expected = s.snapshot.Load(ctx, spec.GoldenPath)
	}
	return &Task{id: idgen.Task(), spec: spec, service: s}
}

// Tasks wraps specs preserving their order.
func (s *Service) Tasks(ctx context.Context, specs []*model.Spec) []scheduler.Task {
	tasks := make([]scheduler.Task, 0, len(specs))
	for _, spec := range specs {
		tasks = append(tasks, s.Task(ctx, spec))
	}
	return tasks
}

// Execute runs the interpreter for task and verifies its output. Assertion
// failures are recorded in the suite; an unavailable browser is returned as a
// fatal error. The completion line and buffered messages are always printed.
func (s *Service) Execute(ctx context.Context, task *Task) (err error) {
	spec := task.Spec()
	ctx, span := tracing.StartSpan(ctx, "runner.Execute")
	span.WithAttributes(map[string]string{"test.file": spec.Path})
	defer func() {
		tracing.EndSpan(span, err)
		console.Printf("Finished testing \"%s\"", spec.Path)
		if log := task.Log(); log != "" {
			console.Println(strings.TrimRight(log, "\n"))
		}
	}()

	result, err := s.interpreter.Run(ctx, s.browser, s.Options(spec.Path))
	if err != nil {
		message := fmt.Sprintf("%s: %v", spec.Path, err)
		task.Logln(message)
		s.suite.RecordError(message)
		if errors.Is(err, browser.ErrUnavailable) {
			return scheduler.Fatal(err)
		}
		return err
	}
	outcome, err := s.snapshot.Verify(ctx, result.Output, spec.Expected, spec.GoldenPath, s.config.Bless)
	if err != nil {
		message := fmt.Sprintf("%s: %v", spec.Path, err)
		task.Logln(message)
		s.suite.RecordError(message)
		return err
	}
	switch {
	case outcome.Blessed:
	case outcome.Mismatch():
		message := outcome.Message()
		task.Logln(message)
		s.suite.RecordError(message)
		s.log.Debug("output mismatch", logx.String("test", spec.Path), logx.Int("hunks", outcome.Stats.Hunks))
	default:
		s.suite.AddSuccess()
	}
	return nil
}

// New creates a runner service
func New(suite *report.Suite, b browser.Browser, options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig(), suite: suite, browser: b, log: logx.Nop()}
	for _, opt := range options {
		opt(ret)
	}
	if ret.interpreter == nil {
		return nil, fmt.Errorf("interpreter is required")
	}
	if ret.suite == nil {
		return nil, fmt.Errorf("suite is required")
	}
	if ret.snapshot == nil {
		ret.snapshot = snapshot.New(snapshot.WithLogger(ret.log))
	}
	return ret, nil
}
