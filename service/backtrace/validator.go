// Package backtrace checks the inclusion chain reported for a failing script
// against the expected sequence of frames.
package backtrace

import (
	"fmt"
	"strings"
)

// MissingErrorLine is reported when the output holds no top-level error line.
const MissingErrorLine = "missing top-level error line"

// Frame is one location of a backtrace chain. The first frame has no file: it
// points into the failing script itself.
type Frame struct {
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
	Line   int    `json:"line" yaml:"line"`
	Column *int   `json:"column,omitempty" yaml:"column,omitempty"`
}

func (f *Frame) String() string {
	position := fmt.Sprintf("line %d", f.Line)
	if f.Column != nil {
		position += fmt.Sprintf(":%d", *f.Column)
	}
	if f.File == "" {
		return position
	}
	return fmt.Sprintf("at `%s` %s", f.File, position)
}

// matches compares file and line; the column only counts when expected names one.
func (f *Frame) matches(actual *Frame) bool {
	if f.File != actual.File || f.Line != actual.Line {
		return false
	}
	if f.Column == nil {
		return true
	}
	return actual.Column != nil && *actual.Column == *f.Column
}

// Result holds the outcome of one validation.
type Result struct {
	Errors []string `json:"errors,omitempty"`
	// Frames holds every frame parsed from the output, in order.
	Frames []*Frame `json:"frames,omitempty"`
	// Missing is set when no top-level error line was found.
	Missing bool `json:"missing,omitempty"`
}

// Passed returns true when no discrete error was recorded.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

func (r *Result) addError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validate checks that output reports a failure whose inclusion chain equals
// expected. Mismatching frames are recorded one by one; scanning never stops
// early except at the trailing page URL.
func Validate(output string, expected []Frame) *Result {
	result := &Result{}
	lines := strings.Split(output, "\n")

	i := 0
	for i < len(lines) && !strings.HasPrefix(lines[i], ErrorMarker) {
		i++
	}
	if i == len(lines) {
		result.Missing = true
		result.addError("%s, output:\n%s", MissingErrorLine, output)
		return result
	}

	pos := 0
	first, err := parseErrorLine(lines[i])
	i++
	switch {
	case err != nil:
		result.addError("malformed error line: %v", err)
		pos++
	case len(expected) == 0:
		result.addError("unexpected extra frame: `%s`", first)
		result.Frames = append(result.Frames, first)
	default:
		result.Frames = append(result.Frames, first)
		if want := &expected[0]; want.File != "" || !want.matches(first) {
			result.addError("expected %q, found %q", want.String(), first.String())
		}
		pos++
	}

	for ; i < len(lines); i++ {
		line := lines[i]
		if !isChainLine(line) {
			if isURLLine(line) {
				break
			}
			continue
		}
		if pos >= len(expected) {
			result.addError("unexpected extra frame: `%s`", strings.TrimSpace(line))
			continue
		}
		frame, err := parseChainLine(line)
		if err != nil {
			result.addError("malformed frame `%s`: %v", strings.TrimSpace(line), err)
			pos++
			continue
		}
		result.Frames = append(result.Frames, frame)
		if want := &expected[pos]; !want.matches(frame) {
			result.addError("expected %q, found %q", want.String(), frame.String())
		}
		pos++
	}
	if pos < len(expected) {
		result.addError("expected frames not found: matched %d of %d, output:\n%s", pos, len(expected), output)
	}
	return result
}
