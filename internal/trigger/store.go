package trigger

import (
	"sort"
	"sync"
)

// State of the store
type State int

// store states
const (
	StateEmpty State = iota
	StateLoaded
)

func (s State) String() string {
	if s == StateLoaded {
		return "LOADED"
	}
	return "EMPTY"
}

// MarshalText implement encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Store triggers of the currently loaded lecture
type Store struct {
	mu        sync.Mutex
	state     State
	lectureID string
	triggers  []Trigger
}

// NewStore create an empty store
func NewStore() *Store {
	return &Store{}
}

// Load replace whatever was loaded with the triggers of lectureID.
//
// Every loaded trigger starts pending, regardless of its Triggered field.
func (s *Store) Load(lectureID string, triggers []Trigger) {
	fresh := make([]Trigger, len(triggers))
	copy(fresh, triggers)
	for i := range fresh {
		fresh[i].Triggered = false
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Time < fresh[j].Time
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoaded
	s.lectureID = lectureID
	s.triggers = fresh
}

// Reset drop all triggers
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateEmpty
	s.lectureID = ""
	s.triggers = nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) LectureID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lectureID
}

// Triggers snapshot in ascending time order
func (s *Store) Triggers() []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Trigger, len(s.triggers))
	copy(result, s.triggers)
	return result
}

// Pending number of triggers not fired yet
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.triggers {
		if !t.Triggered {
			n++
		}
	}
	return n
}

// fireDue mark every pending trigger due at position as fired
func (s *Store) fireDue(position float64) []Fired {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []Fired
	for i := range s.triggers {
		t := &s.triggers[i]
		if t.Time > position {
			break // sorted
		}
		if t.Triggered {
			continue
		}
		t.Triggered = true
		fired = append(fired, Fired{
			LectureID: s.lectureID,
			Type:      t.Type,
			Action:    t.Action,
			Time:      t.Time,
		})
	}
	return fired
}
