package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/viant/afs"
	"github.com/viant/uitest"
	"github.com/viant/uitest/internal/console"
	"github.com/viant/uitest/internal/logx"
	"github.com/viant/uitest/report"
	"github.com/viant/uitest/tracing"
)

const (
	serviceName    = "uitest"
	serviceVersion = "0.1.0"
)

// arguments holds the parsed command line.
type arguments struct {
	bless   bool
	config  string
	filters []string
}

// parseArgs accepts flags and filter tokens in any order.
func parseArgs(args []string) (*arguments, error) {
	ret := &arguments{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--bless":
			ret.bless = true
		case arg == "--config":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--config requires a file")
			}
			i++
			ret.config = args[i]
		case strings.HasPrefix(arg, "--config="):
			ret.config = strings.TrimPrefix(arg, "--config=")
		default:
			ret.filters = append(ret.filters, arg)
		}
	}
	return ret, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	parsed, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		return 1
	}
	fs := afs.New()
	config := uitest.DefaultConfig()
	if parsed.config != "" {
		if config, err = uitest.LoadConfig(ctx, fs, parsed.config); err != nil {
			fmt.Fprintln(os.Stderr, "fatal:", err)
			return 1
		}
	}
	logger := logx.New(config.Log, os.Stderr)
	if config.Trace.File != "" {
		if err = tracing.Init(serviceName, serviceVersion, config.Trace.File); err != nil {
			logger.Warn("tracing disabled", logx.Err(err))
		}
	}

	bless := parsed.bless || config.Bless || uitest.BlessFromEnv()
	srv := uitest.New(
		uitest.WithConfig(config),
		uitest.WithFs(fs),
		uitest.WithFilters(parsed.filters...),
		uitest.WithBless(bless),
		uitest.WithProgress(func(delta report.Delta) {
			logger.Debug("check recorded", logx.String("suite", delta.Suite), logx.Int("errors", delta.Errors), logx.Int("successes", delta.Successes))
		}),
		uitest.WithLogger(logger))
	suite, err := srv.Check(ctx)
	if suite != nil {
		_ = suite.Render(console.Stdout())
	}
	if err != nil {
		logger.Error("ui tests aborted", logx.Err(err))
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if suite.TotalErrors() != 0 {
		return 1
	}
	return 0
}
