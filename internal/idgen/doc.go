// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Task identifiers are opaque: callers key in-flight sets by them but must not
// parse them.
package idgen
