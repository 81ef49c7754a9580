// Package scheduler runs test tasks with bounded parallelism. Tasks are
// admitted in input order, completions are serviced in whatever order they
// settle, and the drain phase is guarded by a sliding stall watchdog: if no
// task completes within the stall timeout the run fails naming every task
// still in flight. Running tasks are never cancelled.
package scheduler
