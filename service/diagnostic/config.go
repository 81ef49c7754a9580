package diagnostic

import (
	"github.com/viant/uitest/service/backtrace"
	"github.com/viant/uitest/service/interpreter"
)

// Suite names, also used as filter targets.
const (
	CompactDisplayFormat = "compact-display-format"
	FailedTestName       = "failed-test-name"
	Backtrace            = "backtrace"
)

// Artifact is a file a test must leave behind.
type Artifact struct {
	Test string `yaml:"test" json:"test"`
	File string `yaml:"file" json:"file"`
}

// Config represents diagnostic suites configuration
type Config struct {
	TestFolder string                 `yaml:"testFolder,omitempty" json:"testFolder,omitempty"`
	Variables  []interpreter.Variable `yaml:"variables,omitempty" json:"variables,omitempty"`
	// CompactOutput is the golden file of the compact display check.
	CompactOutput string `yaml:"compactOutput,omitempty" json:"compactOutput,omitempty"`
	CompactFilter string `yaml:"compactFilter,omitempty" json:"compactFilter,omitempty"`
	// FailedFilter selects the tests expected to fail.
	FailedFilter string   `yaml:"failedFilter,omitempty" json:"failedFilter,omitempty"`
	FailedTests  []string `yaml:"failedTests,omitempty" json:"failedTests,omitempty"`
	// BacktraceFilter selects the test whose failure chain is validated.
	BacktraceFilter string            `yaml:"backtraceFilter,omitempty" json:"backtraceFilter,omitempty"`
	BacktraceChain  []backtrace.Frame `yaml:"backtraceChain,omitempty" json:"backtraceChain,omitempty"`
	Artifacts       []Artifact        `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`
	Bless           bool              `yaml:"bless,omitempty" json:"bless,omitempty"`
}

// DefaultConfig returns the default diagnostic configuration
func DefaultConfig() Config {
	return Config{
		TestFolder:      "tests/ui/",
		Variables:       []interpreter.Variable{{Name: "DOC_PATH", Value: "tests/html_files"}},
		CompactOutput:   "tests/compact-display/compact-display.output",
		CompactFilter:   "assert-c",
		FailedFilter:    "failure-from-include",
		FailedTests:     []string{"failure-from-include-2.goml", "failure-from-include.goml"},
		BacktraceFilter: "failure-from-include-2.goml",
		BacktraceChain: []backtrace.Frame{
			{Line: 4},
			{File: "tests/ui/auxiliary/utils2.goml", Line: 7},
			{File: "tests/ui/auxiliary/utils.goml", Line: 6},
		},
		Artifacts: DefaultArtifacts(),
	}
}

// DefaultArtifacts lists the screenshots produced by the screenshot tests.
func DefaultArtifacts() []Artifact {
	return []Artifact{
		{Test: "screenshot-info.goml", File: "tests/ui/tadam.png"},
		{Test: "screenshot-on-failure.goml", File: "tests/ui/screenshot-on-failure-failure.png"},
	}
}

// Init fills unset fields with defaults.
func (c *Config) Init() {
	defaults := DefaultConfig()
	if c.TestFolder == "" {
		c.TestFolder = defaults.TestFolder
	}
	if len(c.Variables) == 0 {
		c.Variables = defaults.Variables
	}
	if c.CompactOutput == "" {
		c.CompactOutput = defaults.CompactOutput
	}
	if c.CompactFilter == "" {
		c.CompactFilter = defaults.CompactFilter
	}
	if c.FailedFilter == "" {
		c.FailedFilter = defaults.FailedFilter
	}
	if len(c.FailedTests) == 0 {
		c.FailedTests = defaults.FailedTests
	}
	if c.BacktraceFilter == "" {
		c.BacktraceFilter = defaults.BacktraceFilter
	}
	if len(c.BacktraceChain) == 0 {
		c.BacktraceChain = defaults.BacktraceChain
	}
	if c.Artifacts == nil {
		c.Artifacts = defaults.Artifacts
	}
}
