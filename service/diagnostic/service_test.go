package diagnostic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/uitest/internal/console"
	"github.com/viant/uitest/report"
	"github.com/viant/uitest/service/browser"
	"github.com/viant/uitest/service/interpreter"
	"github.com/viant/uitest/service/snapshot"
)

const cwd = "/home/ci/uitest"

type fakeBrowser struct{ closed int32 }

func (f *fakeBrowser) Execute(ctx context.Context, command string, timeout time.Duration) (string, int, error) {
	return "", 0, nil
}

func (f *fakeBrowser) Close(ctx context.Context) error {
	atomic.AddInt32(&f.closed, 1)
	return nil
}

type fakeLauncher struct {
	browser  *fakeBrowser
	err      error
	launched int
}

func (l *fakeLauncher) Launch(ctx context.Context) (browser.Browser, error) {
	l.launched++
	if l.err != nil {
		return nil, l.err
	}
	return l.browser, nil
}

// printing emulates an interpreter echoing its output to the console.
func printing(output string, err error) (interpreter.Interpreter, *[]*interpreter.Options) {
	var calls []*interpreter.Options
	return interpreter.Func(func(ctx context.Context, b browser.Browser, options *interpreter.Options) (*interpreter.Result, error) {
		calls = append(calls, options)
		if options.ShowLogs {
			_, _ = io.WriteString(console.Stdout(), output)
		}
		if err != nil {
			return nil, err
		}
		return &interpreter.Result{Output: output, Failed: true, Status: 1}, nil
	}), &calls
}

func newService(t *testing.T, output string, runErr error, options ...Option) (*Service, *fakeLauncher, *[]*interpreter.Options) {
	launcher := &fakeLauncher{browser: &fakeBrowser{}}
	interp, calls := printing(output, runErr)
	fs := afs.New()
	base := []Option{
		WithFs(fs),
		WithSnapshot(snapshot.New(snapshot.WithFs(fs), snapshot.WithCurrentDir(cwd))),
	}
	return New(launcher, interp, append(base, options...)...), launcher, calls
}

func redirect(t *testing.T) *bytes.Buffer {
	var out bytes.Buffer
	restore := console.Redirect(&out, &out)
	t.Cleanup(restore)
	return &out
}

func TestService_CompactDisplayFormat(t *testing.T) {
	ctx := context.Background()
	output := "=> Starting doc-ui tests...\n[FAILED] file://" + cwd + "/tests/html_files/a.html\nin `" + cwd + "/tests/ui/a.goml`\n"
	normalized := "=> Starting doc-ui tests...\n[FAILED] file://$CURRENT_DIR/tests/html_files/a.html\nin `" + cwd + "/tests/ui/a.goml`\n"

	testCases := []struct {
		description string
		golden      string
		bless       bool
		successes   int
		errors      int
	}{
		{description: "match", golden: normalized, successes: 1},
		{description: "mismatch", golden: "something else\n", errors: 1},
		{description: "bless", bless: true},
	}
	for i, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			out := redirect(t)
			goldenPath := fmt.Sprintf("mem://localhost/diagnostic/compact/%d.output", i)
			config := DefaultConfig()
			config.CompactOutput = goldenPath
			srv, launcher, calls := newService(t, output, nil, WithConfig(config), WithBless(tc.bless))
			if tc.golden != "" {
				require.NoError(t, srv.fs.Upload(ctx, goldenPath, 0644, strings.NewReader(tc.golden)))
			}
			suite := report.New("ui items")
			require.NoError(t, srv.RunIfMatches(ctx, suite, CompactDisplayFormat, srv.CompactDisplayFormat))

			assert.Equal(t, tc.successes, suite.TotalSuccesses())
			assert.Equal(t, tc.errors, suite.TotalErrors())
			assert.EqualValues(t, 1, launcher.browser.closed)
			require.Len(t, *calls, 1)
			assert.Equal(t, []string{"--test-folder", "tests/ui/", "--variable", "DOC_PATH", "tests/html_files",
				"--display-format", "compact", "--filter", "assert-c", "--no-screenshot-comparison"}, (*calls)[0].Args())
			if tc.errors == 0 {
				assert.NotContains(t, out.String(), "[FAILED]")
			}
			if tc.bless {
				assert.Contains(t, out.String(), "Blessed `"+goldenPath+"`")
				data, err := srv.fs.DownloadWithURL(ctx, goldenPath)
				require.NoError(t, err)
				assert.Equal(t, normalized, string(data))
			}
		})
	}
}

func TestService_FailedTestName(t *testing.T) {
	testCases := []struct {
		description string
		output      string
		successes   int
		errors      int
		contains    string
	}{
		{
			description: "expected failures",
			output: "failure-from-include... FAILED\n" +
				"======== tests/ui/failure-from-include.goml ========\n" +
				"======== tests/ui/failure-from-include-2.goml\n",
			successes: 2,
		},
		{
			description: "unexpected failure",
			output: "======== tests/ui/failure-from-include.goml\n" +
				"======== tests/ui/assert-css.goml\n",
			successes: 1,
			errors:    1,
			contains:  "`failed-test-name` failed, full output:",
		},
		{
			description: "no failure",
			output:      "all passed\n",
			errors:      1,
			contains:    "No failed tests found in `failed-test-name`, full output:\nall passed",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			out := redirect(t)
			srv, _, calls := newService(t, tc.output, nil)
			suite := report.New("ui items")
			require.NoError(t, srv.RunIfMatches(context.Background(), suite, FailedTestName, srv.FailedTestName))
			assert.Equal(t, tc.errors, suite.TotalErrors())
			assert.Equal(t, tc.successes, suite.TotalSuccesses())
			assert.Equal(t, "failure-from-include", (*calls)[0].Filter)
			if tc.contains != "" {
				assert.Contains(t, out.String(), tc.contains)
			}
		})
	}
}

func TestService_Backtrace(t *testing.T) {
	testCases := []struct {
		description string
		output      string
		successes   int
		errors      int
		contains    string
	}{
		{
			description: "include chain",
			output: "failure-from-include-2... FAILED\n" +
				"[ERROR] line 4: Error: assert-text failed\n" +
				"    at `tests/ui/auxiliary/utils2.goml` line 7\n" +
				"    at `tests/ui/auxiliary/utils.goml` line 6\n" +
				"    at <file:///home/ci/uitest/tests/html_files/elements.html>\n",
			successes: 1,
		},
		{
			description: "missing error line",
			output:      "failure-from-include-2... FAILED\n",
			errors:      1,
			contains:    "missing top-level error line",
		},
		{
			description: "wrong frame",
			output: "[ERROR] line 4: Error\n" +
				"    at `tests/ui/auxiliary/utils2.goml` line 9\n" +
				"    at `tests/ui/auxiliary/utils.goml` line 6\n",
			errors:   1,
			contains: "test failed, output:",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			out := redirect(t)
			srv, _, calls := newService(t, tc.output, nil)
			suite := report.New("ui items")
			require.NoError(t, srv.RunIfMatches(context.Background(), suite, Backtrace, srv.Backtrace))
			assert.Equal(t, tc.successes, suite.TotalSuccesses())
			assert.Equal(t, tc.errors, suite.TotalErrors())
			assert.Equal(t, "failure-from-include-2.goml", (*calls)[0].Filter)
			if tc.contains != "" {
				assert.Contains(t, out.String(), tc.contains)
			}
		})
	}
}

func TestService_CaptureFailures(t *testing.T) {
	t.Run("interpreter failure", func(t *testing.T) {
		redirect(t)
		srv, launcher, _ := newService(t, "partial output\n", errors.New("protocol error"))
		suite := report.New("ui items")
		require.NoError(t, srv.RunIfMatches(context.Background(), suite, Backtrace, srv.Backtrace))
		child := suite.Summary().Children[0]
		assert.Equal(t, []string{"protocol error\n\nOutput: partial output\n"}, child.Errors)
		assert.Zero(t, child.Successes)
		assert.EqualValues(t, 1, launcher.browser.closed)
	})
	t.Run("launch failure", func(t *testing.T) {
		redirect(t)
		srv, launcher, calls := newService(t, "", nil)
		launcher.err = fmt.Errorf("%w: node: not found", browser.ErrUnavailable)
		suite := report.New("ui items")
		require.NoError(t, srv.RunIfMatches(context.Background(), suite, FailedTestName, srv.FailedTestName))
		assert.Equal(t, 1, suite.TotalErrors())
		assert.Empty(t, *calls)
	})
}

func TestService_RunAll_Filtered(t *testing.T) {
	out := redirect(t)
	srv, launcher, calls := newService(t, "[ERROR] line 4\n    at `tests/ui/auxiliary/utils2.goml` line 7\n    at `tests/ui/auxiliary/utils.goml` line 6\n",
		nil, WithFilters([]string{"backtrace"}))
	suite := report.New("ui items")
	require.NoError(t, srv.RunAll(context.Background(), suite))
	assert.Contains(t, out.String(), "`compact-display-format` test filtered out")
	assert.Contains(t, out.String(), "`failed-test-name` test filtered out")
	assert.Equal(t, 1, launcher.launched)
	assert.Len(t, *calls, 1)
	assert.Equal(t, 1, suite.TotalSuccesses())
}

func TestService_CheckArtifacts(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		description string
		filters     []string
		present     []string
		errors      []string
	}{
		{
			description: "all selected",
			present:     []string{"mem://localhost/artifacts/1/tadam.png"},
			errors:      []string{"`screenshot-on-failure.goml` should have generated a `mem://localhost/artifacts/1/failure.png` file!"},
		},
		{
			description: "not selected",
			filters:     []string{"assert-css"},
		},
		{
			description: "selected and present",
			filters:     []string{"screenshot-info"},
			present:     []string{"mem://localhost/artifacts/3/tadam.png"},
		},
	}
	for i, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			redirect(t)
			config := DefaultConfig()
			config.Artifacts = []Artifact{
				{Test: "screenshot-info.goml", File: fmt.Sprintf("mem://localhost/artifacts/%d/tadam.png", i+1)},
				{Test: "screenshot-on-failure.goml", File: fmt.Sprintf("mem://localhost/artifacts/%d/failure.png", i+1)},
			}
			srv, _, _ := newService(t, "", nil, WithConfig(config), WithFilters(tc.filters))
			for _, file := range tc.present {
				require.NoError(t, srv.fs.Upload(ctx, file, 0644, strings.NewReader("png")))
			}
			suite := report.New("ui items")
			require.NoError(t, srv.CheckArtifacts(ctx, suite))
			assert.Equal(t, tc.errors, suite.Errors())
			for _, file := range tc.present {
				exists, err := srv.fs.Exists(ctx, file)
				require.NoError(t, err)
				assert.False(t, exists)
			}
		})
	}
}
