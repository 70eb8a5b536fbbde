package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/pot-code/learning-engine/internal/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	changes []Notice
}

func (r *recorder) record(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, n)
}

func (r *recorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changes[len(r.changes)-1]
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

func TestShowUpdateHide(t *testing.T) {
	r := &recorder{}
	c := NewCenter(time.Hour, r.record)
	defer c.Close()

	c.Show(Notice{ID: "n1", Type: trigger.Quiz, Payload: "q1"})
	assert.True(t, r.last().Visible)
	assert.Equal(t, Loading, r.last().Status)

	assert.True(t, c.Update("n1", "Closures", Ready))
	assert.Equal(t, "Closures", r.last().Title)
	assert.Equal(t, Ready, r.last().Status)

	assert.False(t, c.Update("other", "x", Ready), "stale ids are ignored")

	assert.True(t, c.Hide())
	assert.False(t, r.last().Visible)
	assert.False(t, c.Hide(), "already hidden")

	assert.True(t, c.Reshow())
	n, ok := c.Current()
	require.True(t, ok)
	assert.True(t, n.Visible)
	assert.Equal(t, "Closures", n.Title)
}

func TestShowReplacesCurrent(t *testing.T) {
	c := NewCenter(time.Hour, nil)
	defer c.Close()

	c.Show(Notice{ID: "n1"})
	c.Show(Notice{ID: "n2"})
	n, _ := c.Current()
	assert.Equal(t, "n2", n.ID)
	assert.False(t, c.Update("n1", "late", Ready))
}

func TestAutoDismiss(t *testing.T) {
	r := &recorder{}
	c := NewCenter(5*time.Millisecond, r.record)
	defer c.Close()

	c.Show(Notice{ID: "n1"})
	require.Eventually(t, func() bool {
		n, _ := c.Current()
		return !n.Visible
	}, time.Second, time.Millisecond)
	assert.Equal(t, 2, r.len())
	assert.False(t, r.last().Visible)
}

func TestReshowWithoutNotice(t *testing.T) {
	c := NewCenter(0, nil)
	assert.False(t, c.Reshow())
	assert.False(t, c.Hide())
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestFailOnlyTouchesMatchingNotice(t *testing.T) {
	r := &recorder{}
	c := NewCenter(time.Hour, r.record)
	defer c.Close()

	c.Show(Notice{ID: "QUIZ-q1", LectureID: "l2", Type: trigger.Quiz, Payload: "q1", Status: Loading})
	assert.False(t, c.Fail("QUIZ-q1", "l1"), "same entry of another lecture")
	assert.False(t, c.Fail("CODE-c1", "l2"))
	n, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, Loading, n.Status)
	assert.True(t, n.Visible)

	assert.True(t, c.Fail("QUIZ-q1", "l2"))
	n, _ = c.Current()
	assert.Equal(t, Failed, n.Status)
	assert.False(t, n.Visible)
	assert.Equal(t, n, r.last())
}
