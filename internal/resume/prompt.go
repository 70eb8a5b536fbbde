package resume

import (
	"sync"
	"time"

	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/infrastructure/schedule"
)

// PromptState lifecycle of a continue-watching prompt
type PromptState int

const (
	PromptPending PromptState = iota
	PromptConfirmed
	PromptDeclined
	PromptExpired
)

func (s PromptState) String() string {
	switch s {
	case PromptPending:
		return "pending"
	case PromptConfirmed:
		return "confirmed"
	case PromptDeclined:
		return "declined"
	case PromptExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// MarshalText implement encoding.TextMarshaler
func (s PromptState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Prompt "continue watching?" confirmation, answered at most once
type Prompt struct {
	mu        sync.Mutex
	candidate Candidate
	state     PromptState
	expiry    *schedule.Task
}

// NewPrompt ttl <= 0 keeps the prompt open until answered. onExpire runs when the ttl dismisses it
func NewPrompt(candidate Candidate, ttl time.Duration, onExpire func(*Prompt)) *Prompt {
	p := &Prompt{candidate: candidate}
	if ttl > 0 {
		p.expiry = schedule.After(ttl, func() {
			if p.settle(PromptExpired) && onExpire != nil {
				onExpire(p)
			}
		})
	}
	return p
}

// Candidate resume target
func (p *Prompt) Candidate() Candidate {
	return p.candidate
}

// State current state
func (p *Prompt) State() PromptState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Confirm accept the resume target, its selection carries the parsed resume offset
func (p *Prompt) Confirm() (Selection, error) {
	if !p.settle(PromptConfirmed) {
		return Selection{}, domain.ErrNoPendingPrompt
	}
	return p.candidate.Selection(), nil
}

// Decline dismiss only
func (p *Prompt) Decline() error {
	if !p.settle(PromptDeclined) {
		return domain.ErrNoPendingPrompt
	}
	return nil
}

// Close stop the expiry timer without answering
func (p *Prompt) Close() {
	p.expiry.Stop()
}

func (p *Prompt) settle(to PromptState) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PromptPending {
		return false
	}
	p.state = to
	if to != PromptExpired {
		p.expiry.Stop()
	}
	return true
}
