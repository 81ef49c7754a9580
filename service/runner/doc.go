// Package runner turns a discovered test script into a scheduler task. A task
// runs the interpreter for its single script, verifies or blesses the output
// against the golden file and buffers its own messages so that the output of
// concurrently running tests does not interleave.
package runner
