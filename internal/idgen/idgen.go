package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier as string.
var NewFunc = func() string { return uuid.New().String() }

// Task returns an identifier for a scheduled test task.
func Task() string { return "task-" + NewFunc() }
