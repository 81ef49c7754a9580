package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/uitest/internal/clock"
)

type fakeTask struct {
	id    string
	label string
	run   func(ctx context.Context) error
}

func (t *fakeTask) ID() string                    { return t.id }
func (t *fakeTask) Label() string                 { return t.label }
func (t *fakeTask) Run(ctx context.Context) error { return t.run(ctx) }

func newTasks(count int, run func(i int) error) []Task {
	tasks := make([]Task, count)
	for i := 0; i < count; i++ {
		i := i
		tasks[i] = &fakeTask{
			id:    fmt.Sprintf("id-%d", i),
			label: fmt.Sprintf("tests/ui/test-%02d.goml", i),
			run:   func(ctx context.Context) error { return run(i) },
		}
	}
	return tasks
}

type fakeResource struct {
	closed int32
	err    error
}

func (r *fakeResource) Close(ctx context.Context) error {
	atomic.AddInt32(&r.closed, 1)
	return r.err
}

type settled struct {
	mux    sync.Mutex
	counts map[string]int
	errors map[string]error
}

func newSettled() *settled {
	return &settled{counts: map[string]int{}, errors: map[string]error{}}
}

func (s *settled) listener(task Task, err error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.counts[task.ID()]++
	if err != nil {
		s.errors[task.Label()] = err
	}
}

func TestLimit(t *testing.T) {
	testCases := []struct {
		parallelism int
		expect      int
	}{
		{parallelism: 0, expect: 1},
		{parallelism: 1, expect: 1},
		{parallelism: 2, expect: 2},
		{parallelism: 3, expect: 2},
		{parallelism: 8, expect: 5},
		{parallelism: 16, expect: 9},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprint(tc.parallelism), func(t *testing.T) {
			assert.Equal(t, tc.expect, Limit(tc.parallelism))
		})
	}
	assert.GreaterOrEqual(t, DefaultLimit(), 1)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(WithLimit(0))
	assert.Error(t, err)
	_, err = New(WithStallTimeout(-time.Second))
	assert.Error(t, err)
}

func TestService_Run(t *testing.T) {
	var boom = errors.New("boom")
	testCases := []struct {
		description string
		limit       int
		tasks       int
		failing     map[int]bool
	}{
		{description: "single slot", limit: 1, tasks: 5},
		{description: "bounded", limit: 3, tasks: 12},
		{description: "limit above task count", limit: 8, tasks: 3},
		{description: "failures continue", limit: 2, tasks: 6, failing: map[int]bool{1: true, 4: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var inFlight, maxInFlight, ran int32
			resource := &fakeResource{}
			results := newSettled()
			srv, err := New(WithLimit(tc.limit), WithStallTimeout(5*time.Second), WithResource(resource), WithListener(results.listener))
			require.NoError(t, err)

			tasks := newTasks(tc.tasks, func(i int) error {
				current := atomic.AddInt32(&inFlight, 1)
				for {
					max := atomic.LoadInt32(&maxInFlight)
					if current <= max || atomic.CompareAndSwapInt32(&maxInFlight, max, current) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&ran, 1)
				atomic.AddInt32(&inFlight, -1)
				if tc.failing[i] {
					return boom
				}
				return nil
			})

			err = srv.Run(context.Background(), tasks)
			assert.NoError(t, err)
			assert.LessOrEqual(t, int(maxInFlight), tc.limit)
			assert.EqualValues(t, tc.tasks, ran)
			assert.EqualValues(t, 1, resource.closed)
			assert.Equal(t, tc.tasks, len(results.counts))
			for id, count := range results.counts {
				assert.Equal(t, 1, count, id)
			}
			assert.Equal(t, len(tc.failing), len(results.errors))
			for _, e := range results.errors {
				assert.ErrorIs(t, e, boom)
			}
		})
	}
}

func TestService_Run_Fatal(t *testing.T) {
	crashed := errors.New("browser crashed")
	resource := &fakeResource{}
	var ran int32
	srv, err := New(WithLimit(1), WithResource(resource))
	require.NoError(t, err)

	tasks := newTasks(3, func(i int) error {
		atomic.AddInt32(&ran, 1)
		if i == 0 {
			return Fatal(crashed)
		}
		return nil
	})
	err = srv.Run(context.Background(), tasks)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, crashed)
	assert.Contains(t, err.Error(), "tests/ui/test-00.goml")
	assert.EqualValues(t, 1, atomic.LoadInt32(&ran))
	assert.EqualValues(t, 0, resource.closed)
	assert.Nil(t, Fatal(nil))
}

func TestService_Run_Stall(t *testing.T) {
	prev := clock.AfterFunc
	defer func() { clock.AfterFunc = prev }()
	clock.AfterFunc = func(d time.Duration) (<-chan time.Time, func() bool) {
		fired := make(chan time.Time, 1)
		fired <- time.Now()
		return fired, func() bool { return false }
	}

	release := make(chan struct{})
	defer close(release)
	resource := &fakeResource{}
	srv, err := New(WithLimit(4), WithStallTimeout(20*time.Second), WithResource(resource))
	require.NoError(t, err)

	tasks := []Task{
		&fakeTask{id: "2", label: "tests/ui/b.goml", run: func(ctx context.Context) error { <-release; return nil }},
		&fakeTask{id: "1", label: "tests/ui/a.goml", run: func(ctx context.Context) error { <-release; return nil }},
	}
	err = srv.Run(context.Background(), tasks)
	var stall *StallError
	require.True(t, errors.As(err, &stall))
	assert.Equal(t, []string{"tests/ui/a.goml", "tests/ui/b.goml"}, stall.Labels)
	assert.Equal(t, 20*time.Second, stall.Timeout)
	assert.Contains(t, err.Error(), "tests/ui/a.goml, tests/ui/b.goml")
	assert.EqualValues(t, 0, resource.closed)
}

// manualTimer is a watchdog timer fired by the test.
type manualTimer struct {
	fired   chan time.Time
	stopped int32
}

func (m *manualTimer) fire() { m.fired <- time.Now() }

// useManualTimers replaces the watchdog clock; every armed timer is published on the returned channel.
func useManualTimers(t *testing.T) <-chan *manualTimer {
	prev := clock.AfterFunc
	t.Cleanup(func() { clock.AfterFunc = prev })
	armed := make(chan *manualTimer, 16)
	clock.AfterFunc = func(d time.Duration) (<-chan time.Time, func() bool) {
		timer := &manualTimer{fired: make(chan time.Time, 1)}
		armed <- timer
		return timer.fired, func() bool { return atomic.CompareAndSwapInt32(&timer.stopped, 0, 1) }
	}
	return armed
}

func nextTimer(t *testing.T, armed <-chan *manualTimer) *manualTimer {
	select {
	case timer := <-armed:
		return timer
	case <-time.After(5 * time.Second):
		require.FailNow(t, "watchdog was not armed")
		return nil
	}
}

func TestService_Run_StallAfterPartialProgress(t *testing.T) {
	armed := useManualTimers(t)
	gates := []chan struct{}{make(chan struct{}), make(chan struct{}), make(chan struct{})}
	defer func() {
		close(gates[1])
		close(gates[2])
	}()
	resource := &fakeResource{}
	srv, err := New(WithLimit(3), WithResource(resource))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(context.Background(), newTasks(3, func(i int) error { <-gates[i]; return nil }))
	}()

	first := nextTimer(t, armed)
	close(gates[0])
	second := nextTimer(t, armed)
	assert.EqualValues(t, 1, atomic.LoadInt32(&first.stopped))
	second.fire()

	err = <-done
	var stall *StallError
	require.True(t, errors.As(err, &stall))
	assert.Equal(t, []string{"tests/ui/test-01.goml", "tests/ui/test-02.goml"}, stall.Labels)
	assert.NotContains(t, err.Error(), "tests/ui/test-00.goml")
	assert.EqualValues(t, 0, resource.closed)
}

func TestService_Run_SlidingWatchdog(t *testing.T) {
	armed := useManualTimers(t)
	gates := []chan struct{}{make(chan struct{}), make(chan struct{}), make(chan struct{})}
	srv, err := New(WithLimit(3))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(context.Background(), newTasks(3, func(i int) error { <-gates[i]; return nil }))
	}()

	var timers []*manualTimer
	for i := range gates {
		timers = append(timers, nextTimer(t, armed))
		close(gates[i])
		if i > 0 {
			// a window superseded by a completion no longer counts
			timers[i-1].fire()
		}
	}
	require.NoError(t, <-done)
	assert.Len(t, timers, 3)
	for _, timer := range timers {
		assert.EqualValues(t, 1, atomic.LoadInt32(&timer.stopped))
	}
	assert.Empty(t, armed)
}

func TestService_Run_Panic(t *testing.T) {
	results := newSettled()
	srv, err := New(WithLimit(2), WithListener(results.listener))
	require.NoError(t, err)

	tasks := newTasks(2, func(i int) error {
		if i == 1 {
			panic("interpreter exploded")
		}
		return nil
	})
	assert.NoError(t, srv.Run(context.Background(), tasks))
	require.Contains(t, results.errors, "tests/ui/test-01.goml")
	assert.Contains(t, results.errors["tests/ui/test-01.goml"].Error(), "interpreter exploded")
}

func TestService_Run_Errors(t *testing.T) {
	srv, err := New(WithLimit(1))
	require.NoError(t, err)
	assert.ErrorIs(t, srv.Run(context.Background(), nil), ErrNoTasks)

	duplicated := []Task{
		&fakeTask{id: "x", label: "a.goml", run: func(ctx context.Context) error { return nil }},
		&fakeTask{id: "x", label: "b.goml", run: func(ctx context.Context) error { return nil }},
	}
	srv, err = New(WithLimit(2))
	require.NoError(t, err)
	assert.ErrorIs(t, srv.Run(context.Background(), duplicated), ErrDuplicateTask)
}

func TestService_Run_ReleaseFailure(t *testing.T) {
	resource := &fakeResource{err: errors.New("already gone")}
	srv, err := New(WithLimit(2), WithResource(resource))
	require.NoError(t, err)
	assert.NoError(t, srv.Run(context.Background(), newTasks(2, func(i int) error { return nil })))
	assert.EqualValues(t, 1, resource.closed)
}

func TestService_Run_Cancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	srv, err := New(WithLimit(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	tasks := newTasks(2, func(i int) error {
		cancel()
		<-release
		return nil
	})
	assert.ErrorIs(t, srv.Run(ctx, tasks), context.Canceled)
}
