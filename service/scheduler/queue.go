package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/viant/uitest/internal/clock"
)

// Queue is the keyed set of in-flight tasks.
type Queue struct {
	mux       sync.RWMutex
	entries   map[string]*entry
	highWater int
}

type entry struct {
	label   string
	started time.Time
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{entries: map[string]*entry{}}
}

// Add registers an in-flight task; it returns false when the id is already present.
func (q *Queue) Add(id, label string) bool {
	q.mux.Lock()
	defer q.mux.Unlock()
	if _, ok := q.entries[id]; ok {
		return false
	}
	q.entries[id] = &entry{label: label, started: clock.Now()}
	if len(q.entries) > q.highWater {
		q.highWater = len(q.entries)
	}
	return true
}

// Remove drops a task; only the first removal of an id returns true.
func (q *Queue) Remove(id string) bool {
	q.mux.Lock()
	defer q.mux.Unlock()
	if _, ok := q.entries[id]; !ok {
		return false
	}
	delete(q.entries, id)
	return true
}

// Elapsed returns how long the task has been in flight.
func (q *Queue) Elapsed(id string) time.Duration {
	q.mux.RLock()
	defer q.mux.RUnlock()
	if e, ok := q.entries[id]; ok {
		return clock.Since(e.started)
	}
	return 0
}

// Len returns the number of in-flight tasks.
func (q *Queue) Len() int {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return len(q.entries)
}

// Labels returns the sorted labels of in-flight tasks.
func (q *Queue) Labels() []string {
	q.mux.RLock()
	defer q.mux.RUnlock()
	labels := make([]string, 0, len(q.entries))
	for _, e := range q.entries {
		labels = append(labels, e.label)
	}
	sort.Strings(labels)
	return labels
}

// HighWater returns the largest size the queue reached.
func (q *Queue) HighWater() int {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return q.highWater
}
