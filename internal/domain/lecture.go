package domain

import "context"

// SectionModel course section as held by the learning page
type SectionModel struct {
	ID       string `json:"section_id" validate:"required"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// LectureModel playable video unit of a section
type LectureModel struct {
	ID       string `json:"lectureId"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	VideoURL string `json:"videoUrl"`
}

// LectureEventModel server-declared time trigger
type LectureEventModel struct {
	TriggerTime float64 `json:"triggerTime"`
	Payload     string  `json:"payload"`
	EventType   string  `json:"eventType"`
}

// ContentDetailModel quiz or code exercise detail, only the title is consumed
type ContentDetailModel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// LectureProgressModel playback position pushed to the server
type LectureProgressModel struct {
	UserID     string `json:"userId" validate:"required"`
	LectureID  string `json:"lectureId" validate:"required"`
	LastViewAt string `json:"lastViewAt" validate:"required,timecode"` // hh:mm:ss
}

// RecentLearningModel where the learner left off in an enrollment
type RecentLearningModel struct {
	SectionID                    string  `json:"sectionId"`
	LectureID                    string  `json:"lectureId"`
	LectureTitle                 string  `json:"lectureTitle"`
	LectureVideoURL              string  `json:"lectureVideoUrl"`
	LastViewedAt                 string  `json:"lastViewedAt"` // hh:mm:ss
	EnrollmentProgressPercentage float64 `json:"enrollmentProgressPercentage"`
}

type LectureEventRepository interface {
	GetEventsForLecture(ctx context.Context, lectureID string) ([]*LectureEventModel, error)
}

type ContentDetailRepository interface {
	GetCodeExerciseDetail(ctx context.Context, exerciseID string) (*ContentDetailModel, error)
	GetQuizDetail(ctx context.Context, quizID string) (*ContentDetailModel, error)
}

type LectureProgressRepository interface {
	UpdateLectureProgress(ctx context.Context, progress *LectureProgressModel) error
}

type EnrollmentRepository interface {
	GetRecentLearning(ctx context.Context, enrollmentID string) (*RecentLearningModel, error)
}

type LectureRepository interface {
	GetLecturesForSection(ctx context.Context, sectionID string) ([]*LectureModel, error)
}
