package session

import (
	"context"
	"sync"
	"time"

	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/infrastructure/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepSchedule cron spec of the idle sweep
const SweepSchedule = "@every 1m"

// Builder build an unstarted session for id
type Builder func(id string, cfg Config) *Session

// Registry owns every open session, nothing is kept in package state
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ids      uuid.Generator
	build    Builder
	idle     time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewRegistry idle <= 0 disables the sweep
func NewRegistry(ids uuid.Generator, build Builder, idle time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ids:      ids,
		build:    build,
		idle:     idle,
		logger:   logger,
	}
}

// Init open and start a new session
func (r *Registry) Init(ctx context.Context, cfg Config) (*Session, error) {
	id, err := r.ids.Generate()
	if err != nil {
		return nil, err
	}
	s := r.build(id, cfg)
	s.Start(ctx)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	r.logger.Debug("session opened", zap.String("session.id", id), zap.String("course.id", cfg.CourseID))
	return s, nil
}

// Get session id
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// GetOwned session id when it belongs to userID
func (r *Registry) GetOwned(id, userID string) (*Session, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if s.UserID() != userID {
		return nil, domain.ErrSessionForbidden
	}
	return s, nil
}

// Destroy close and forget session id
func (r *Registry) Destroy(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Close(ctx)
	return nil
}

// DestroyAll close every session
func (r *Registry) DestroyAll(ctx context.Context) {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close(ctx)
	}
}

// Len number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep destroy sessions idle for longer than the idle timeout, returns how many were closed
func (r *Registry) Sweep(ctx context.Context) int {
	if r.idle <= 0 {
		return 0
	}
	deadline := time.Now().Add(-r.idle)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastActive().Before(deadline) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close(ctx)
	}
	if len(expired) > 0 {
		r.logger.Info("idle sessions closed", zap.Int("session.count", len(expired)))
	}
	return len(expired)
}

// StartSweeper schedule Sweep on SweepSchedule
func (r *Registry) StartSweeper() error {
	if r.idle <= 0 {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(SweepSchedule, func() {
		r.Sweep(context.Background())
	}); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	return nil
}

// Stop stop the sweeper and close every session
func (r *Registry) Stop(ctx context.Context) {
	if r.cron != nil {
		select {
		case <-r.cron.Stop().Done():
		case <-ctx.Done():
		}
	}
	r.DestroyAll(ctx)
}
