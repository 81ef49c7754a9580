// Package browser manages the host the headless browser runs on. A Browser is
// shared by every test of one discovery run; each Execute call opens its own
// logical session so concurrent tests do not interfere.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks browser infrastructure failures: launch, probe or use after close.
var ErrUnavailable = errors.New("browser: unavailable")

// ErrTimeout marks a command that ran past its timeout; its output is partial.
var ErrTimeout = errors.New("browser: command timed out")

// Browser runs interpreter commands next to a headless browser.
type Browser interface {
	// Execute runs command in a fresh session, returning its combined output and
	// exit status. On error the output, if any, is partial.
	Execute(ctx context.Context, command string, timeout time.Duration) (output string, status int, err error)
	Close(ctx context.Context) error
}

// Launcher starts a browser.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}
