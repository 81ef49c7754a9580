package uitest

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/model"
	"github.com/viant/uitest/service/browser"
	"github.com/viant/uitest/service/diagnostic"
	"github.com/viant/uitest/service/interpreter"
	"github.com/viant/uitest/service/meta"
	"github.com/viant/uitest/service/scheduler"
)

// Config is a serialisable representation of the harness configuration. Zero
// fields inherit the defaults of DefaultConfig once Init is called.
type Config struct {
	TestFolder string `json:"testFolder" yaml:"testFolder"`
	ScriptExt  string `json:"scriptExt" yaml:"scriptExt"`
	// HTMLFolder is passed to every script as DOC_PATH.
	HTMLFolder string                 `json:"htmlFolder" yaml:"htmlFolder"`
	Variables  []interpreter.Variable `json:"variables,omitempty" yaml:"variables,omitempty"`
	// Parallelism drives the in-flight limit, parallelism/2+1; 0 uses the CPU count.
	Parallelism  int               `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`
	StallTimeout time.Duration     `json:"stallTimeout,omitempty" yaml:"stallTimeout,omitempty"`
	Bless        bool              `json:"bless,omitempty" yaml:"bless,omitempty"`
	Interpreter  InterpreterConfig `json:"interpreter" yaml:"interpreter"`
	Browser      browser.Config    `json:"browser" yaml:"browser"`
	Diagnostic   diagnostic.Config `json:"diagnostic" yaml:"diagnostic"`
	Log          logx.Config       `json:"log" yaml:"log"`
	Trace        TraceConfig       `json:"trace" yaml:"trace"`
}

// InterpreterConfig selects the UI test interpreter command.
type InterpreterConfig struct {
	Command   string `json:"command" yaml:"command"`
	TimeoutMs int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// TraceConfig enables OpenTelemetry spans written to File.
type TraceConfig struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// DefaultConfig returns a Config populated with the harness defaults.
func DefaultConfig() *Config {
	return &Config{
		TestFolder:   "tests/ui",
		ScriptExt:    model.ScriptExt,
		HTMLFolder:   "tests/html_files",
		Variables:    []interpreter.Variable{{Name: "WINDOWS_PATH", Value: `C:\a\b`}},
		StallTimeout: scheduler.DefaultStallTimeout,
		Interpreter:  InterpreterConfig{Command: interpreter.DefaultCommand, TimeoutMs: 300000},
		Browser:      browser.DefaultConfig(),
		Diagnostic:   diagnostic.DefaultConfig(),
		Log:          logx.Config{Level: "info", Console: true},
	}
}

// Init fills unset fields with defaults.
func (c *Config) Init() {
	defaults := DefaultConfig()
	if c.TestFolder == "" {
		c.TestFolder = defaults.TestFolder
	}
	if c.ScriptExt == "" {
		c.ScriptExt = defaults.ScriptExt
	}
	if c.HTMLFolder == "" {
		c.HTMLFolder = defaults.HTMLFolder
	}
	if c.Variables == nil {
		c.Variables = defaults.Variables
	}
	if c.StallTimeout == 0 {
		c.StallTimeout = defaults.StallTimeout
	}
	if c.Interpreter.Command == "" {
		c.Interpreter.Command = defaults.Interpreter.Command
	}
	if c.Interpreter.TimeoutMs == 0 {
		c.Interpreter.TimeoutMs = defaults.Interpreter.TimeoutMs
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	c.Browser.Init()
	c.Diagnostic.Init()
	docPath := &interpreter.Options{Variables: c.Diagnostic.Variables}
	c.Diagnostic.Variables = docPath.WithVariable("DOC_PATH", c.HTMLFolder).Variables
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must be >= 0, got %d", c.Parallelism)
	}
	if c.StallTimeout < 0 {
		return fmt.Errorf("stallTimeout must be > 0, got %v", c.StallTimeout)
	}
	if c.Interpreter.TimeoutMs < 0 {
		return fmt.Errorf("interpreter.timeoutMs must be >= 0, got %d", c.Interpreter.TimeoutMs)
	}
	return nil
}

// Limit returns the scheduler in-flight limit.
func (c *Config) Limit() int {
	if c.Parallelism == 0 {
		return scheduler.DefaultLimit()
	}
	return scheduler.Limit(c.Parallelism)
}

// ScriptVariables returns the substitutions passed to every test script,
// DOC_PATH first.
func (c *Config) ScriptVariables() []interpreter.Variable {
	options := &interpreter.Options{}
	options.WithVariable("DOC_PATH", c.HTMLFolder)
	for _, variable := range c.Variables {
		options.WithVariable(variable.Name, variable.Value)
	}
	return options.Variables
}

// InterpreterTimeout returns the per run interpreter timeout.
func (c *Config) InterpreterTimeout() time.Duration {
	return time.Duration(c.Interpreter.TimeoutMs) * time.Millisecond
}

// LoadConfig decodes the YAML configuration at URL over the defaults.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	ret := DefaultConfig()
	if err := meta.New(fs).Load(ctx, URL, ret); err != nil {
		return nil, err
	}
	ret.Init()
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
