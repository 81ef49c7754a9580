// Package console owns the process text sinks the harness prints to.
//
// Everything user-visible (test progress, blessed notices, interpreter logs)
// is written through Stdout/Stderr instead of os.Stdout directly so that a
// diagnostic suite can capture it with Capture.
package console

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mux    sync.RWMutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Stdout returns the active stdout sink.
func Stdout() io.Writer { return sink{stream: &stdout} }

// Stderr returns the active stderr sink.
func Stderr() io.Writer { return sink{stream: &stderr} }

// Printf formats to the stdout sink and terminates the line.
func Printf(format string, args ...interface{}) {
	Println(fmt.Sprintf(format, args...))
}

// Println writes text followed by a newline to the stdout sink.
func Println(text string) {
	_, _ = io.WriteString(Stdout(), text+"\n")
}

// sink resolves the current stream on every write, so a writer handed out
// before a Capture still lands in the capture buffer.
type sink struct {
	stream *io.Writer
}

func (s sink) Write(p []byte) (int, error) {
	mux.RLock()
	w := *s.stream
	mux.RUnlock()
	return w.Write(p)
}

// Capture redirects both sinks into one buffer while fn runs and returns what
// was written. The previous sinks are restored on every exit path, including
// a panic inside fn.
func Capture(fn func() error) (output string, err error) {
	buf := &lockedBuffer{}
	mux.Lock()
	prevOut, prevErr := stdout, stderr
	stdout, stderr = buf, buf
	mux.Unlock()
	defer func() {
		mux.Lock()
		stdout, stderr = prevOut, prevErr
		mux.Unlock()
	}()
	err = fn()
	return buf.String(), err
}

// Redirect replaces both sinks and returns a function restoring the previous ones.
func Redirect(out, errOut io.Writer) (restore func()) {
	mux.Lock()
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	mux.Unlock()
	return func() {
		mux.Lock()
		stdout, stderr = prevOut, prevErr
		mux.Unlock()
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
