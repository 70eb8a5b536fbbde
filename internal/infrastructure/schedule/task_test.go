package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery(t *testing.T) {
	var n int32
	task := Every(5*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&n, 1)
	})
	require.Eventually(t, func() bool { return atomic.LoadInt32(&n) >= 3 }, time.Second, time.Millisecond)

	task.Stop()
	task.Stop()
	<-task.Done()
	stopped := atomic.LoadInt32(&n)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&n))
}

func TestEveryCancelsContext(t *testing.T) {
	seen := make(chan context.Context, 1)
	task := Every(time.Millisecond, func(ctx context.Context) {
		select {
		case seen <- ctx:
		default:
		}
	})
	ctx := <-seen
	task.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled on Stop")
	}
}

func TestAfter(t *testing.T) {
	fired := make(chan struct{})
	After(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("task did not fire")
	}
}

func TestAfterStopped(t *testing.T) {
	var n int32
	task := After(20*time.Millisecond, func() { atomic.AddInt32(&n, 1) })
	task.Stop()
	<-task.Done()
	assert.Zero(t, atomic.LoadInt32(&n))

	var nilTask *Task
	nilTask.Stop()
}
