// Package eventlog keeps the notifications surfaced during a learning session
package eventlog

import (
	"sync"
	"time"

	"github.com/pot-code/learning-engine/internal/infrastructure/uuid"
	"github.com/pot-code/learning-engine/internal/trigger"
)

// TargetKind where a log entry navigates to
type TargetKind string

const (
	// TargetExercise coding exercise page
	TargetExercise TargetKind = "exercise"
	// TargetQuiz quiz page
	TargetQuiz TargetKind = "quiz"
)

// Target navigation target of an entry
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// Entry one surfaced event
type Entry struct {
	ID        string            `json:"id"`
	Type      trigger.EventType `json:"type"`
	Payload   string            `json:"payload"`
	Title     string            `json:"title"`
	Timestamp time.Time         `json:"timestamp"`
}

// EntryID stable id of (type, payload)
func EntryID(t trigger.EventType, payload string) string {
	return uuid.FromName(uuid.EventNamespace, t.String(), payload)
}

// Target navigation target, Unknown entries have none
func (e Entry) Target() (Target, bool) {
	switch e.Type {
	case trigger.Code:
		return Target{TargetExercise, e.Payload}, true
	case trigger.Quiz:
		return Target{TargetQuiz, e.Payload}, true
	default:
		return Target{}, false
	}
}

// Log session scoped, no eviction
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	seen    map[string]struct{}
	now     func() time.Time
}

// New create an empty Log
func New() *Log {
	return &Log{
		seen: make(map[string]struct{}),
		now:  time.Now,
	}
}

// Append add an entry unless one with the same (type, payload) exists, reports whether it was added
func (l *Log) Append(t trigger.EventType, payload, title string) (Entry, bool) {
	id := EntryID(t, payload)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[id]; ok {
		return Entry{}, false
	}
	e := Entry{
		ID:        id,
		Type:      t,
		Payload:   payload,
		Title:     title,
		Timestamp: l.now(),
	}
	l.seen[id] = struct{}{}
	l.entries = append(l.entries, e)
	return e, true
}

// Entries insertion order
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// NewestFirst reverse insertion order
func (l *Log) NewestFirst() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.entries)
	result := make([]Entry, n)
	for i, e := range l.entries {
		result[n-1-i] = e
	}
	return result
}

// Len number of entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
