package trigger

import "math"

// Handler receives each fired trigger, it runs on the tick path and must not block
type Handler func(Fired)

// Evaluator fires due triggers on every progress tick
type Evaluator struct {
	store   *Store
	handler Handler
}

// NewEvaluator handler may be nil
func NewEvaluator(store *Store, handler Handler) *Evaluator {
	return &Evaluator{store, handler}
}

// Evaluate fire all pending triggers whose time has been reached, in ascending time order
func (e *Evaluator) Evaluate(playedSeconds float64) []Fired {
	if math.IsNaN(playedSeconds) {
		return nil
	}
	fired := e.store.fireDue(playedSeconds)
	if e.handler != nil {
		for _, f := range fired {
			e.handler(f)
		}
	}
	return fired
}
