// Package notification shows one transient notice at a time for fired triggers
package notification

import (
	"sync"
	"time"

	"github.com/pot-code/learning-engine/internal/infrastructure/schedule"
	"github.com/pot-code/learning-engine/internal/trigger"
)

// DefaultTTL auto-dismiss delay
const DefaultTTL = 7 * time.Second

// Status detail resolution state of a notice
type Status int

const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// MarshalText implement encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Notice popup content
type Notice struct {
	ID        string            `json:"id"`
	LectureID string            `json:"lecture_id"`
	Type      trigger.EventType `json:"type"`
	Payload   string            `json:"payload"`
	Title     string            `json:"title"`
	Status    Status            `json:"status"`
	Visible   bool              `json:"visible"`
}

// ChangeFunc receives a copy of the notice after every change
type ChangeFunc func(Notice)

// Center holds the current notice and its auto-dismiss task
type Center struct {
	mu       sync.Mutex
	ttl      time.Duration
	current  *Notice
	seq      uint64
	dismiss  *schedule.Task
	onChange ChangeFunc
}

// NewCenter ttl <= 0 falls back to DefaultTTL
func NewCenter(ttl time.Duration, onChange ChangeFunc) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if onChange == nil {
		onChange = func(Notice) {}
	}
	return &Center{ttl: ttl, onChange: onChange}
}

// Show replace any current notice with n and make it visible
func (c *Center) Show(n Notice) {
	c.mu.Lock()
	n.Visible = true
	c.current = &n
	c.arm()
	c.mu.Unlock()
	c.onChange(n)
}

// Reshow make the current notice visible again, false when there is none
func (c *Center) Reshow() bool {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return false
	}
	c.current.Visible = true
	c.arm()
	n := *c.current
	c.mu.Unlock()
	c.onChange(n)
	return true
}

// Hide hide the current notice, it can still be reshown
func (c *Center) Hide() bool {
	c.mu.Lock()
	n, ok := c.hide()
	c.mu.Unlock()
	if ok {
		c.onChange(n)
	}
	return ok
}

// Update set title and status of notice id, ignored when id is no longer current
func (c *Center) Update(id, title string, status Status) bool {
	c.mu.Lock()
	if c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return false
	}
	if title != "" {
		c.current.Title = title
	}
	c.current.Status = status
	n := *c.current
	c.mu.Unlock()
	c.onChange(n)
	return true
}

// Fail mark notice id of lectureID as failed and hide it in one step, ignored when it is no longer current
func (c *Center) Fail(id, lectureID string) bool {
	c.mu.Lock()
	if c.current == nil || c.current.ID != id || c.current.LectureID != lectureID {
		c.mu.Unlock()
		return false
	}
	c.current.Status = Failed
	c.hide()
	n := *c.current
	c.mu.Unlock()
	c.onChange(n)
	return true
}

// Current the current notice if any
func (c *Center) Current() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notice{}, false
	}
	return *c.current, true
}

// Close stop the auto-dismiss task
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dismiss.Stop()
	c.dismiss = nil
}

// arm restart the auto-dismiss task, caller holds mu
func (c *Center) arm() {
	c.dismiss.Stop()
	c.seq++
	seq := c.seq
	c.dismiss = schedule.After(c.ttl, func() {
		c.mu.Lock()
		if c.seq != seq {
			c.mu.Unlock()
			return
		}
		n, ok := c.hide()
		c.mu.Unlock()
		if ok {
			c.onChange(n)
		}
	})
}

// hide caller holds mu
func (c *Center) hide() (Notice, bool) {
	if c.current == nil || !c.current.Visible {
		return Notice{}, false
	}
	c.current.Visible = false
	c.dismiss.Stop()
	c.dismiss = nil
	return *c.current, true
}
