package lecture

import (
	"context"
	"sort"

	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// Loader read-through access to section lectures
type Loader struct {
	repo  domain.LectureRepository
	cache Cache
}

// NewLoader create a Loader
func NewLoader(repo domain.LectureRepository, cache Cache) *Loader {
	return &Loader{repo, cache}
}

// Lectures lectures of sectionID ordered by position, fetched once per session
func (l *Loader) Lectures(ctx context.Context, sectionID string) ([]*domain.LectureModel, error) {
	logger := logging.ExtractLoggerFromContext(ctx)

	// a broken cache only costs a refetch
	if has, err := l.cache.Has(ctx, sectionID); err != nil {
		logger.Warn("failed to check lecture cache", zap.Error(err), zap.String("section.id", sectionID))
	} else if has {
		cached, ok, err := l.cache.Get(ctx, sectionID)
		if err != nil {
			logger.Warn("failed to read lecture cache", zap.Error(err), zap.String("section.id", sectionID))
		} else if ok {
			return cached, nil
		}
	}

	lectures, err := l.repo.GetLecturesForSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	lectures = ordered(lectures)
	if err := l.cache.Set(ctx, sectionID, lectures); err != nil {
		logger.Warn("failed to write lecture cache", zap.Error(err), zap.String("section.id", sectionID))
	}
	return lectures, nil
}

// First first lecture of sectionID, domain.ErrLectureNotFound when the section is empty
func (l *Loader) First(ctx context.Context, sectionID string) (*domain.LectureModel, error) {
	lectures, err := l.Lectures(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if len(lectures) == 0 {
		return nil, domain.ErrLectureNotFound
	}
	return lectures[0], nil
}

// Find lecture lectureID of sectionID, domain.ErrLectureNotFound when absent
func (l *Loader) Find(ctx context.Context, sectionID, lectureID string) (*domain.LectureModel, error) {
	lectures, err := l.Lectures(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	for _, lc := range lectures {
		if lc.ID == lectureID {
			return lc, nil
		}
	}
	return nil, domain.ErrLectureNotFound
}

func ordered(lectures []*domain.LectureModel) []*domain.LectureModel {
	result := make([]*domain.LectureModel, 0, len(lectures))
	for _, lc := range lectures {
		if lc != nil {
			result = append(result, lc)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})
	return result
}
