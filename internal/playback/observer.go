// Package playback observes a mounted lecture video
package playback

import (
	"math"
	"sync"
)

// ProgressState last observation of the player, seeking may move it backward
type ProgressState struct {
	PlayedSeconds float64 `json:"played_seconds"`
}

// Media the underlying player element
type Media interface {
	Seek(seconds float64) error
}

// ProgressFunc receives every time update, it runs on the tick path and must be cheap
type ProgressFunc func(ProgressState)

// Observer wraps the media of exactly one mounted lecture.
//
// A lecture switch mounts a new Observer, nothing carries over.
type Observer struct {
	mu         sync.Mutex
	lectureID  string
	media      Media
	startTime  float64
	ready      bool
	seeked     bool
	started    bool
	last       ProgressState
	onProgress ProgressFunc
}

// Mount create an observer for lectureID, startTime is sought once the media is ready
func Mount(lectureID string, media Media, startTime float64, onProgress ProgressFunc) *Observer {
	if math.IsNaN(startTime) || startTime < 0 {
		startTime = 0
	}
	return &Observer{
		lectureID:  lectureID,
		media:      media,
		startTime:  startTime,
		onProgress: onProgress,
	}
}

func (o *Observer) LectureID() string {
	return o.lectureID
}

func (o *Observer) StartTime() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startTime
}

// Ready media became seekable, performs the initial seek on the first call only
func (o *Observer) Ready() error {
	o.mu.Lock()
	o.ready = true
	if o.seeked || o.startTime <= 0 {
		o.seeked = true
		o.mu.Unlock()
		return nil
	}
	o.seeked = true
	start := o.startTime
	o.mu.Unlock()

	return o.media.Seek(start)
}

func (o *Observer) IsReady() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ready
}

// TimeUpdate native time update of the player
func (o *Observer) TimeUpdate(seconds float64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return
	}
	state := ProgressState{PlayedSeconds: seconds}

	o.mu.Lock()
	o.started = true
	o.last = state
	cb := o.onProgress
	o.mu.Unlock()

	if cb != nil {
		cb(state)
	}
}

// Seek jump to seconds, before ready the jump replaces the initial seek target
func (o *Observer) Seek(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	o.mu.Lock()
	if !o.ready {
		o.startTime = seconds
		o.mu.Unlock()
		return nil
	}
	o.mu.Unlock()
	return o.media.Seek(seconds)
}

// LastKnownPosition false if playback has not started
func (o *Observer) LastKnownPosition() (float64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started {
		return 0, false
	}
	return o.last.PlayedSeconds, true
}
