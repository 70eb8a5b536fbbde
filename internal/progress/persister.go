// Package progress periodically pushes the playback position of the active lecture to the server
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/infrastructure/schedule"
	"github.com/pot-code/learning-engine/internal/timecode"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// DefaultInterval persist cadence
const DefaultInterval = 15 * time.Second

// PositionSource latest known playback position, false before playback started
type PositionSource interface {
	LastKnownPosition() (float64, bool)
}

// Persister fire-and-forget position persistence keyed by (user, lecture)
type Persister struct {
	repo     domain.LectureProgressRepository
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration

	mu   sync.Mutex
	task *schedule.Task
	run  *run
}

type run struct {
	userID    string
	lectureID string
	source    PositionSource
}

// NewPersister interval <= 0 falls back to DefaultInterval
func NewPersister(repo domain.LectureProgressRepository, logger *zap.Logger, interval time.Duration) *Persister {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{
		repo:     repo,
		logger:   logger,
		interval: interval,
		timeout:  interval,
	}
}

// Start tear down the running schedule and restart it for (userID, lectureID)
func (p *Persister) Start(userID, lectureID string, source PositionSource) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.task.Stop()
	r := &run{userID, lectureID, source}
	p.run = r
	p.task = schedule.Every(p.interval, func(ctx context.Context) {
		p.persist(ctx, r)
	})
	p.logger.Debug("progress persister started",
		zap.String("user.id", userID),
		zap.String("lecture.id", lectureID),
		zap.Duration("interval", p.interval),
	)
}

// Stop tear down the schedule, an in-flight call is cancelled
func (p *Persister) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.task.Stop()
	p.task = nil
	p.run = nil
}

// Flush persist the current position right now, used before the session goes away
func (p *Persister) Flush(ctx context.Context) bool {
	p.mu.Lock()
	r := p.run
	p.mu.Unlock()
	if r == nil {
		return false
	}
	return p.persist(ctx, r)
}

// persist one cycle, reports whether an update was sent successfully
func (p *Persister) persist(ctx context.Context, r *run) bool {
	if r.userID == "" || r.lectureID == "" || r.source == nil {
		return false
	}
	position, ok := r.source.LastKnownPosition()
	if !ok || position <= 0 {
		return false
	}

	span, ctx := apm.StartSpan(ctx, "Persister.persist", "service")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	update := &domain.LectureProgressModel{
		UserID:     r.userID,
		LectureID:  r.lectureID,
		LastViewAt: timecode.FromSeconds(position),
	}
	if err := p.repo.UpdateLectureProgress(ctx, update); err != nil {
		if ctx.Err() == nil || ctx.Err() == context.DeadlineExceeded {
			p.logger.Warn("failed to persist lecture progress", zap.Error(err),
				zap.String("user.id", r.userID),
				zap.String("lecture.id", r.lectureID),
			)
		}
		return false
	}
	p.logger.Debug("lecture progress persisted",
		zap.String("lecture.id", r.lectureID),
		zap.String("progress.last_view_at", update.LastViewAt),
	)
	return true
}
