package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pot-code/learning-engine/internal/domain"
)

type fakeBackend struct {
	mu       sync.Mutex
	events   map[string][]*domain.LectureEventModel
	eventErr error
	titles   map[string]string
	gates    map[string]chan struct{}
	recent   *domain.RecentLearningModel
	sections map[string][]*domain.LectureModel
	updates  []domain.LectureProgressModel
}

func newBackend() *fakeBackend {
	return &fakeBackend{
		events: map[string][]*domain.LectureEventModel{
			"l1": {
				{TriggerTime: 10, Payload: "q1", EventType: "QUIZ"},
				{TriggerTime: 5, Payload: "ex1", EventType: "CODE"},
			},
			"l2": {
				{TriggerTime: 1, Payload: "ex2", EventType: "CODE"},
			},
		},
		titles: map[string]string{"q1": "Closures", "ex1": "FizzBuzz", "ex2": "Fibonacci"},
		gates:  map[string]chan struct{}{},
		sections: map[string][]*domain.LectureModel{
			"s1": {
				{ID: "l1", Title: "Intro", Position: 1, VideoURL: "l1.mp4"},
				{ID: "l2", Title: "Types", Position: 2, VideoURL: "l2.mp4"},
			},
		},
	}
}

func (b *fakeBackend) deps() Deps {
	return Deps{Events: b, Details: b, Progress: b, Enrollments: b, Lectures: b}
}

func (b *fakeBackend) GetEventsForLecture(ctx context.Context, lectureID string) ([]*domain.LectureEventModel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.eventErr != nil {
		return nil, b.eventErr
	}
	return b.events[lectureID], nil
}

func (b *fakeBackend) detail(id string) (*domain.ContentDetailModel, error) {
	b.mu.Lock()
	gate := b.gates[id]
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	title, ok := b.titles[id]
	if !ok {
		return nil, errors.New("detail not found")
	}
	return &domain.ContentDetailModel{ID: id, Title: title}, nil
}

func (b *fakeBackend) GetCodeExerciseDetail(ctx context.Context, exerciseID string) (*domain.ContentDetailModel, error) {
	return b.detail(exerciseID)
}

func (b *fakeBackend) GetQuizDetail(ctx context.Context, quizID string) (*domain.ContentDetailModel, error) {
	return b.detail(quizID)
}

func (b *fakeBackend) UpdateLectureProgress(ctx context.Context, progress *domain.LectureProgressModel) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, *progress)
	return nil
}

func (b *fakeBackend) progressUpdates() []domain.LectureProgressModel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.LectureProgressModel(nil), b.updates...)
}

func (b *fakeBackend) GetRecentLearning(ctx context.Context, enrollmentID string) (*domain.RecentLearningModel, error) {
	if b.recent == nil {
		return nil, errors.New("no recent learning")
	}
	return b.recent, nil
}

func (b *fakeBackend) GetLecturesForSection(ctx context.Context, sectionID string) ([]*domain.LectureModel, error) {
	return b.sections[sectionID], nil
}

var sections = []*domain.SectionModel{{ID: "s1", Position: 1}}

func newSession(b *fakeBackend, enrollmentID string) *Session {
	return New("sess-1", Config{
		UserID:       "u1",
		CourseID:     "c1",
		EnrollmentID: enrollmentID,
		Sections:     sections,
	}, b.deps(), Options{
		PersistInterval: time.Hour,
		NotificationTTL: time.Hour,
		OutboxSize:      256,
	}, nil)
}

// drain read every buffered outbox message
func drain(s *Session) []Message {
	var result []Message
	for {
		select {
		case m, ok := <-s.Outbox():
			if !ok {
				return result
			}
			result = append(result, m)
		default:
			return result
		}
	}
}

func ofKind(messages []Message, kind MessageKind) []Message {
	var result []Message
	for _, m := range messages {
		if m.Kind == kind {
			result = append(result, m)
		}
	}
	return result
}
