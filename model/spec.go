package model

import "strings"

const (
	// ScriptExt is the default test script extension.
	ScriptExt = ".goml"
	// OutputExt is the golden file extension.
	OutputExt = ".output"
)

// Spec identifies one test script scheduled for execution.
type Spec struct {
	// Path is the script location, relative to the harness working directory.
	Path string `json:"path" yaml:"path"`
	// GoldenPath is the sibling golden file holding the expected output.
	GoldenPath string `json:"goldenPath" yaml:"goldenPath"`
	// Expected holds golden text, or the missing-file sentinel.
	Expected string `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// NewSpec creates a spec for a script, deriving its golden file location.
func NewSpec(scriptPath, scriptExt string) *Spec {
	return &Spec{Path: scriptPath, GoldenPath: GoldenPath(scriptPath, scriptExt)}
}

// Label returns the name used in diagnostics.
func (s *Spec) Label() string {
	return s.Path
}

// GoldenPath swaps the script extension for the golden output one.
func GoldenPath(scriptPath, scriptExt string) string {
	if scriptExt == "" {
		scriptExt = ScriptExt
	}
	return strings.TrimSuffix(scriptPath, scriptExt) + OutputExt
}
