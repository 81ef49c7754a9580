// Package clock indirects wall-clock access so timing-sensitive code
// (suite durations, stall watchdog) can be driven deterministically in tests.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// AfterFunc arms a watchdog timer. Override in tests to fire on demand.
var AfterFunc = func(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Since returns elapsed time measured with NowFunc.
func Since(t time.Time) time.Duration { return NowFunc().Sub(t) }

// After arms a one-shot timer and returns its channel together with a stop function.
func After(d time.Duration) (<-chan time.Time, func() bool) { return AfterFunc(d) }
