package interpreter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/uitest/internal/console"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/service/browser"
)

type fakeBrowser struct {
	commands []string
	output   string
	status   int
	err      error
}

func (f *fakeBrowser) Execute(ctx context.Context, command string, timeout time.Duration) (string, int, error) {
	f.commands = append(f.commands, command)
	return f.output, f.status, f.err
}

func (f *fakeBrowser) Close(ctx context.Context) error { return nil }

func TestOptions_Args(t *testing.T) {
	testCases := []struct {
		description string
		options     *Options
		expect      []string
	}{
		{
			description: "single test",
			options: (&Options{TestFile: "tests/ui/a.goml", MessageFormat: MessageFormatJSON}).
				WithVariable("DOC_PATH", "tests/html_files").
				WithVariable("WINDOWS_PATH", `C:\a\b`),
			expect: []string{"--variable", "DOC_PATH", "tests/html_files", "--variable", "WINDOWS_PATH", `C:\a\b`,
				"--message-format", "json", "--test-file", "tests/ui/a.goml", "--no-screenshot-comparison"},
		},
		{
			description: "filtered folder",
			options: (&Options{TestFolder: "tests/ui/", DisplayFormat: DisplayFormatCompact, Filter: "assert-c"}).
				WithVariable("DOC_PATH", "x").WithVariable("DOC_PATH", "tests/html_files"),
			expect: []string{"--test-folder", "tests/ui/", "--variable", "DOC_PATH", "tests/html_files",
				"--display-format", "compact", "--filter", "assert-c", "--no-screenshot-comparison"},
		},
		{
			description: "screenshots",
			options:     &Options{TestFile: "a.goml", ScreenshotComparison: true, Extra: []string{"--no-headless"}},
			expect:      []string{"--test-file", "a.goml", "--screenshot-comparison", "--no-headless"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.options.Args())
		})
	}
}

func TestShell_Run(t *testing.T) {
	testCases := []struct {
		description string
		browser     *fakeBrowser
		showLogs    bool
		expectOut   string
		failed      bool
		expectErr   error
	}{
		{
			description: "passing",
			browser:     &fakeBrowser{output: "a... OK\n"},
		},
		{
			description: "failing scripts are not an error",
			browser:     &fakeBrowser{output: "a... FAILED\n", status: 1},
			showLogs:    true,
			expectOut:   "a... FAILED\n",
			failed:      true,
		},
		{
			description: "missing interpreter",
			browser:     &fakeBrowser{output: "npx: not found", status: 127},
			expectErr:   browser.ErrUnavailable,
		},
		{
			description: "timeout with partial output",
			browser:     &fakeBrowser{output: "a... ", err: fmt.Errorf("%w: after 1s", browser.ErrTimeout)},
			showLogs:    true,
			expectErr:   browser.ErrTimeout,
		},
		{
			description: "browser failure",
			browser:     &fakeBrowser{err: browser.ErrUnavailable},
			expectErr:   browser.ErrUnavailable,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var out bytes.Buffer
			restore := console.Redirect(&out, &out)
			defer restore()

			srv := NewShell("", time.Second, logx.Nop())
			options := &Options{TestFile: "tests/ui/a b.goml", ShowLogs: tc.showLogs}
			result, err := srv.Run(context.Background(), tc.browser, options)
			assert.Equal(t, []string{"npx browser-ui-test --test-file 'tests/ui/a b.goml' --no-screenshot-comparison"}, tc.browser.commands)
			if tc.expectErr != nil {
				assert.True(t, errors.Is(err, tc.expectErr), err)
				assert.Nil(t, result)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.failed, result.Failed)
			assert.Equal(t, tc.browser.output, result.Output)
			assert.Equal(t, tc.expectOut, out.String())
		})
	}
}

func TestShell_Run_NoBrowser(t *testing.T) {
	_, err := NewShell("bin/run", 0, logx.Nop()).Run(context.Background(), nil, &Options{TestFile: "a.goml"})
	assert.ErrorIs(t, err, browser.ErrUnavailable)
}
