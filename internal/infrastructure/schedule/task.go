// Package schedule runs cancellable timer driven tasks tied to an owner's lifetime
package schedule

import (
	"context"
	"sync"
	"time"
)

// Task a scheduled function, Stop is safe to call more than once and from inside the task
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every run fn every interval until stopped, ctx passed to fn is cancelled on Stop
func Every(interval time.Duration, fn func(ctx context.Context)) *Task {
	if interval <= 0 {
		panic("schedule: interval must be positive")
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
	return t
}

// After run fn once after d unless stopped before
func After(d time.Duration, fn func()) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			if ctx.Err() == nil {
				fn()
			}
		}
	}()
	return t
}

// Stop cancel the task, it does not wait for a running fn to return
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.once.Do(t.cancel)
}

// Done closed once the task goroutine has exited
func (t *Task) Done() <-chan struct{} {
	return t.done
}
