// Package tracing wires OpenTelemetry spans around test tasks and suites.
// When no exporter was installed every span is a no-op, so the harness can
// call StartSpan unconditionally.
package tracing
