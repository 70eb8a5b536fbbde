package session

import (
	"github.com/pot-code/learning-engine/internal/notification"
	"github.com/pot-code/learning-engine/internal/resume"
	"github.com/pot-code/learning-engine/internal/trigger"
)

// Snapshot read-only view of a session
type Snapshot struct {
	ID           string               `json:"id"`
	CourseID     string               `json:"course_id"`
	EnrollmentID string               `json:"enrollment_id,omitempty"`
	Selection    resume.Selection     `json:"selection"`
	Ready        bool                 `json:"ready"`
	Position     *float64             `json:"position,omitempty"`
	TriggerState trigger.State        `json:"trigger_state"`
	Triggers     []trigger.Trigger    `json:"triggers"`
	Prompt       *PromptView          `json:"prompt,omitempty"`
	Notification *notification.Notice `json:"notification,omitempty"`
	EventCount   int                  `json:"event_count"`
}

// Snapshot current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	sel, o, p := s.selection, s.observer, s.prompt
	s.mu.Unlock()

	snap := Snapshot{
		ID:           s.id,
		CourseID:     s.cfg.CourseID,
		EnrollmentID: s.cfg.EnrollmentID,
		Selection:    sel,
		TriggerState: s.store.State(),
		Triggers:     s.store.Triggers(),
		EventCount:   s.events.Len(),
	}
	if o != nil {
		snap.Ready = o.IsReady()
		if pos, ok := o.LastKnownPosition(); ok {
			snap.Position = &pos
		}
	}
	if p != nil {
		snap.Prompt = &PromptView{p.State(), p.Candidate()}
	}
	if n, ok := s.notices.Current(); ok {
		snap.Notification = &n
	}
	return snap
}
