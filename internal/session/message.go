package session

import (
	"github.com/pot-code/learning-engine/internal/resume"
)

// MessageKind outbox message discriminator
type MessageKind string

const (
	KindLecture      MessageKind = "lecture"
	KindSeek         MessageKind = "seek"
	KindTrigger      MessageKind = "trigger"
	KindNotification MessageKind = "notification"
	KindResumePrompt MessageKind = "resume_prompt"
)

// Message pushed to the page over the event stream
type Message struct {
	Kind MessageKind `json:"kind"`
	Data interface{} `json:"data"`
}

// SeekCommand ask the player of LectureID to jump
type SeekCommand struct {
	LectureID string  `json:"lecture_id"`
	Seconds   float64 `json:"seconds"`
}

// PromptView continue-watching prompt as shown to the page
type PromptView struct {
	State     resume.PromptState `json:"state"`
	Candidate resume.Candidate   `json:"candidate"`
}
