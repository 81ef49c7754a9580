// Package report aggregates check outcomes into a tree of suites. Every suite
// keeps its own error messages and success count; totals roll up from the
// children. A suite is safe for concurrent use, so parallel test tasks can
// record into the same one.
package report
