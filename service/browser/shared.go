package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/uitest/internal/console"
	"github.com/viant/uitest/internal/logx"
)

// Shared wraps a Browser so that it is closed exactly once, no matter how
// many owners release it.
type Shared struct {
	browser Browser
	log     logx.Logger
	once    sync.Once
	mux     sync.RWMutex
	closed  bool
	err     error
}

// Execute delegates to the wrapped browser until it is closed.
func (s *Shared) Execute(ctx context.Context, command string, timeout time.Duration) (string, int, error) {
	s.mux.RLock()
	closed := s.closed
	s.mux.RUnlock()
	if closed {
		return "", 0, fmt.Errorf("%w: already closed", ErrUnavailable)
	}
	return s.browser.Execute(ctx, command, timeout)
}

// Close closes the wrapped browser on the first call; later calls return the
// first outcome. A close failure is printed and logged as a warning.
func (s *Shared) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.mux.Lock()
		s.closed = true
		s.mux.Unlock()
		if s.err = s.browser.Close(ctx); s.err != nil {
			console.Printf("Failed to close browser: %v", s.err)
			s.log.Warn("browser close failed", logx.Err(s.err))
		}
	})
	return s.err
}

// NewShared wraps browser.
func NewShared(browser Browser, logger logx.Logger) *Shared {
	return &Shared{browser: browser, log: logger}
}
