// Package interpreter invokes the external .goml interpreter against a browser.
package interpreter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/viant/uitest/internal/console"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/internal/shell"
	"github.com/viant/uitest/service/browser"
)

// DefaultCommand starts the interpreter.
const DefaultCommand = "npx browser-ui-test"

// Result is the outcome of one interpreter run.
type Result struct {
	Output string
	Status int
	// Failed is set when at least one script reported a failure.
	Failed bool
}

// Interpreter runs test scripts against a browser.
type Interpreter interface {
	Run(ctx context.Context, b browser.Browser, options *Options) (*Result, error)
}

// Func adapts a function to Interpreter.
type Func func(ctx context.Context, b browser.Browser, options *Options) (*Result, error)

// Run calls f.
func (f Func) Run(ctx context.Context, b browser.Browser, options *Options) (*Result, error) {
	return f(ctx, b, options)
}

// Shell runs the interpreter as a command on the browser host.
type Shell struct {
	command string
	timeout time.Duration
	log     logx.Logger
}

// Run executes the interpreter. A non-zero exit means failing scripts and is
// reported through Result; only a missing or unrunnable interpreter, a
// timeout or a browser failure is an error. Partial output never becomes a
// Result.
func (s *Shell) Run(ctx context.Context, b browser.Browser, options *Options) (*Result, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: no browser for %v", browser.ErrUnavailable, options.Label())
	}
	command := s.command + " " + shell.Join(options.Args()...)
	output, status, err := b.Execute(ctx, command, s.timeout)
	if err != nil {
		if partial := strings.TrimSpace(output); partial != "" {
			return nil, fmt.Errorf("failed to run %v: %w, partial output:\n%s", options.Label(), err, partial)
		}
		return nil, fmt.Errorf("failed to run %v: %w", options.Label(), err)
	}
	if options.ShowLogs && output != "" {
		_, _ = io.WriteString(console.Stdout(), strings.TrimRight(output, "\n")+"\n")
	}
	if status == 126 || status == 127 {
		return nil, fmt.Errorf("%w: %v exited with %d: %s", browser.ErrUnavailable, s.command, status, strings.TrimSpace(output))
	}
	s.log.Debug("interpreter finished", logx.String("run", options.Label()), logx.Int("status", status))
	return &Result{Output: output, Status: status, Failed: status != 0}, nil
}

// NewShell creates a shell interpreter; an empty command selects DefaultCommand.
func NewShell(command string, timeout time.Duration, logger logx.Logger) *Shell {
	if command == "" {
		command = DefaultCommand
	}
	return &Shell{command: command, timeout: timeout, log: logger}
}
