// Package trigger holds the time triggers of the loaded lecture and fires them as playback advances.
package trigger

import (
	"fmt"
	"math"
	"strings"

	"github.com/pot-code/learning-engine/internal/domain"
)

// EventType kind of contextual event a trigger surfaces
type EventType int

const (
	// Unknown server value this client does not recognize, display only
	Unknown EventType = iota
	// Code coding exercise prompt
	Code
	// Quiz quiz prompt
	Quiz
)

// ParseEventType map a wire value onto EventType, unrecognized values become Unknown
func ParseEventType(s string) EventType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CODE":
		return Code
	case "QUIZ":
		return Quiz
	default:
		return Unknown
	}
}

func (t EventType) String() string {
	switch t {
	case Code:
		return "CODE"
	case Quiz:
		return "QUIZ"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implement encoding.TextMarshaler
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implement encoding.TextUnmarshaler
func (t *EventType) UnmarshalText(text []byte) error {
	*t = ParseEventType(string(text))
	return nil
}

// Trigger fires once when playback reaches Time
type Trigger struct {
	Time      float64   `json:"time"`
	Action    string    `json:"action"` // quiz id or exercise id
	Type      EventType `json:"type"`
	Triggered bool      `json:"triggered"`
}

func (t Trigger) String() string {
	return fmt.Sprintf("%s(%s)@%.2f", t.Type, t.Action, t.Time)
}

// Fired a trigger that has just been fired
type Fired struct {
	LectureID string    `json:"lecture_id"`
	Type      EventType `json:"type"`
	Action    string    `json:"action"`
	Time      float64   `json:"time"`
}

// FromEvents convert wire events into pending triggers, entries with an unusable time are dropped
func FromEvents(events []*domain.LectureEventModel) []Trigger {
	result := make([]Trigger, 0, len(events))
	for _, e := range events {
		if e == nil || math.IsNaN(e.TriggerTime) || math.IsInf(e.TriggerTime, 0) || e.TriggerTime < 0 {
			continue
		}
		result = append(result, Trigger{
			Time:   e.TriggerTime,
			Action: e.Payload,
			Type:   ParseEventType(e.EventType),
		})
	}
	return result
}
