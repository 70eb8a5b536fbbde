// Package resume decides which lecture a learning page opens with and whether to offer "continue watching".
package resume

import (
	"context"
	"sort"

	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/infrastructure/logging"
	"github.com/pot-code/learning-engine/internal/timecode"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// Selection active lecture together with its start offset, applied as one update
type Selection struct {
	SectionID string  `json:"section_id"`
	LectureID string  `json:"lecture_id"`
	VideoURL  string  `json:"video_url"`
	StartTime float64 `json:"start_time"`
}

// Empty no lecture selected
func (s Selection) Empty() bool {
	return s.LectureID == ""
}

// Candidate resume target offered to the learner
type Candidate struct {
	SectionID          string  `json:"section_id"`
	LectureID          string  `json:"lecture_id"`
	LectureTitle       string  `json:"lecture_title"`
	VideoURL           string  `json:"video_url"`
	LastViewedAt       string  `json:"last_viewed_at"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// Selection selection made when the learner continues
func (c Candidate) Selection() Selection {
	return Selection{
		SectionID: c.SectionID,
		LectureID: c.LectureID,
		VideoURL:  c.VideoURL,
		StartTime: timecode.ToSeconds(c.LastViewedAt),
	}
}

// Decision outcome of a reconciliation, Prompt is nil when nothing needs confirming
type Decision struct {
	Initial Selection
	Prompt  *Candidate
}

// LectureSource section lectures lookup
type LectureSource interface {
	First(ctx context.Context, sectionID string) (*domain.LectureModel, error)
	Find(ctx context.Context, sectionID, lectureID string) (*domain.LectureModel, error)
}

// Reconciler runs once per page load
type Reconciler struct {
	enrollments domain.EnrollmentRepository
	lectures    LectureSource
}

// NewReconciler create a Reconciler
func NewReconciler(enrollments domain.EnrollmentRepository, lectures LectureSource) *Reconciler {
	return &Reconciler{enrollments, lectures}
}

// Reconcile never fails, every failure degrades to the first lecture at offset 0
func (r *Reconciler) Reconcile(ctx context.Context, sections []*domain.SectionModel, enrollmentID string) Decision {
	span, ctx := apm.StartSpan(ctx, "Reconciler.Reconcile", "service")
	defer span.End()

	logger := logging.ExtractLoggerFromContext(ctx)
	fallback := Decision{Initial: r.firstOfCourse(ctx, sections)}
	if enrollmentID == "" {
		return fallback
	}

	recent, err := r.enrollments.GetRecentLearning(ctx, enrollmentID)
	if err != nil {
		logger.Warn("failed to fetch recent learning, starting from the first lecture",
			zap.Error(err), zap.String("enrollment.id", enrollmentID))
		return fallback
	}
	if recent == nil || recent.SectionID == "" {
		return fallback
	}

	candidate, ok := r.candidate(ctx, recent)
	if !ok {
		return fallback
	}
	if candidate.ProgressPercentage == 0 {
		return Decision{Initial: Selection{
			SectionID: candidate.SectionID,
			LectureID: candidate.LectureID,
			VideoURL:  candidate.VideoURL,
		}}
	}
	return Decision{Initial: fallback.Initial, Prompt: &candidate}
}

func (r *Reconciler) candidate(ctx context.Context, recent *domain.RecentLearningModel) (Candidate, bool) {
	logger := logging.ExtractLoggerFromContext(ctx)

	lc, err := r.lectures.Find(ctx, recent.SectionID, recent.LectureID)
	if err == nil {
		url := recent.LectureVideoURL
		if url == "" {
			url = lc.VideoURL
		}
		title := recent.LectureTitle
		if title == "" {
			title = lc.Title
		}
		return Candidate{
			SectionID:          recent.SectionID,
			LectureID:          lc.ID,
			LectureTitle:       title,
			VideoURL:           url,
			LastViewedAt:       recent.LastViewedAt,
			ProgressPercentage: recent.EnrollmentProgressPercentage,
		}, true
	}
	if err != domain.ErrLectureNotFound {
		logger.Warn("failed to load lectures of the recent section",
			zap.Error(err), zap.String("section.id", recent.SectionID))
		return Candidate{}, false
	}

	first, err := r.lectures.First(ctx, recent.SectionID)
	if err != nil {
		logger.Warn("recent section has no playable lecture",
			zap.Error(err), zap.String("section.id", recent.SectionID))
		return Candidate{}, false
	}
	return Candidate{
		SectionID:          recent.SectionID,
		LectureID:          first.ID,
		LectureTitle:       first.Title,
		VideoURL:           first.VideoURL,
		LastViewedAt:       timecode.Zero,
		ProgressPercentage: recent.EnrollmentProgressPercentage,
	}, true
}

// firstOfCourse first lecture of the first section, empty selection when there is none
func (r *Reconciler) firstOfCourse(ctx context.Context, sections []*domain.SectionModel) Selection {
	ordered := make([]*domain.SectionModel, 0, len(sections))
	for _, s := range sections {
		if s != nil && s.ID != "" {
			ordered = append(ordered, s)
		}
	}
	if len(ordered) == 0 {
		return Selection{}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	section := ordered[0]
	first, err := r.lectures.First(ctx, section.ID)
	if err != nil {
		logging.ExtractLoggerFromContext(ctx).Warn("failed to resolve the first lecture",
			zap.Error(err), zap.String("section.id", section.ID))
		return Selection{SectionID: section.ID}
	}
	return Selection{
		SectionID: section.ID,
		LectureID: first.ID,
		VideoURL:  first.VideoURL,
	}
}
