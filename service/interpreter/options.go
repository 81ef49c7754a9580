package interpreter

import "strings"

// Message and display formats understood by the interpreter.
const (
	MessageFormatJSON    = "json"
	DisplayFormatCompact = "compact"
)

// Variable is a substitution exposed to test scripts.
type Variable struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Options configures one interpreter run.
type Options struct {
	TestFolder    string
	TestFile      string
	Variables     []Variable
	MessageFormat string
	DisplayFormat string
	Filter        string
	// ScreenshotComparison enables image diffs against stored screenshots;
	// when unset, comparison is explicitly disabled.
	ScreenshotComparison bool
	// ShowLogs echoes the interpreter output to the console.
	ShowLogs bool
	Extra    []string
}

// WithVariable adds or replaces a variable.
func (o *Options) WithVariable(name, value string) *Options {
	for i := range o.Variables {
		if o.Variables[i].Name == name {
			o.Variables[i].Value = value
			return o
		}
	}
	o.Variables = append(o.Variables, Variable{Name: name, Value: value})
	return o
}

// Label names the run in logs and errors.
func (o *Options) Label() string {
	switch {
	case o.TestFile != "":
		return o.TestFile
	case o.Filter != "":
		return o.TestFolder + " (" + o.Filter + ")"
	}
	return o.TestFolder
}

// Args renders the options as interpreter command line arguments.
func (o *Options) Args() []string {
	var args []string
	if o.TestFolder != "" {
		args = append(args, "--test-folder", o.TestFolder)
	}
	for _, variable := range o.Variables {
		args = append(args, "--variable", variable.Name, variable.Value)
	}
	if o.MessageFormat != "" {
		args = append(args, "--message-format", o.MessageFormat)
	}
	if o.DisplayFormat != "" {
		args = append(args, "--display-format", o.DisplayFormat)
	}
	if o.Filter != "" {
		args = append(args, "--filter", o.Filter)
	}
	if o.TestFile != "" {
		args = append(args, "--test-file", o.TestFile)
	}
	if o.ScreenshotComparison {
		args = append(args, "--screenshot-comparison")
	} else {
		args = append(args, "--no-screenshot-comparison")
	}
	return append(args, o.Extra...)
}

func (o *Options) String() string {
	return strings.Join(o.Args(), " ")
}
