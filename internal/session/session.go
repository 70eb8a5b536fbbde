// Package session orchestrates the learning engine of one open learning page
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/eventlog"
	"github.com/pot-code/learning-engine/internal/lecture"
	"github.com/pot-code/learning-engine/internal/notification"
	"github.com/pot-code/learning-engine/internal/playback"
	"github.com/pot-code/learning-engine/internal/progress"
	"github.com/pot-code/learning-engine/internal/resume"
	"github.com/pot-code/learning-engine/internal/trigger"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// Config what the page knows when it opens
type Config struct {
	UserID       string
	CourseID     string
	EnrollmentID string
	Sections     []*domain.SectionModel
}

// Deps external collaborators
type Deps struct {
	Events      domain.LectureEventRepository
	Details     domain.ContentDetailRepository
	Progress    domain.LectureProgressRepository
	Enrollments domain.EnrollmentRepository
	Lectures    domain.LectureRepository
	Cache       lecture.Cache
}

// Options timing knobs
type Options struct {
	PersistInterval time.Duration
	NotificationTTL time.Duration
	ResumePromptTTL time.Duration
	OutboxSize      int
}

// DefaultOutboxSize outbox buffer when Options.OutboxSize is not set
const DefaultOutboxSize = 64

// Session state of one learning page
type Session struct {
	id     string
	cfg    Config
	deps   Deps
	opts   Options
	logger *zap.Logger

	loader     *lecture.Loader
	reconciler *resume.Reconciler
	store      *trigger.Store
	evaluator  *trigger.Evaluator
	persister  *progress.Persister
	events     *eventlog.Log
	notices    *notification.Center

	mu            sync.Mutex
	selection     resume.Selection
	generation    uint64
	observer      *playback.Observer
	lectureCtx    context.Context
	lectureCancel context.CancelFunc
	prompt        *resume.Prompt
	lastActive    time.Time
	closed        bool

	outMu  sync.Mutex
	outbox chan Message
	done   bool
}

// New create a session, call Start to select the initial lecture
func New(id string, cfg Config, deps Deps, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = DefaultOutboxSize
	}
	if deps.Cache == nil {
		deps.Cache = lecture.NewMemoryCache()
	}
	logger = logger.With(zap.String("session.id", id), zap.String("user.id", cfg.UserID))

	s := &Session{
		id:         id,
		cfg:        cfg,
		deps:       deps,
		opts:       opts,
		logger:     logger,
		store:      trigger.NewStore(),
		persister:  progress.NewPersister(deps.Progress, logger, opts.PersistInterval),
		events:     eventlog.New(),
		outbox:     make(chan Message, opts.OutboxSize),
		lastActive: time.Now(),
	}
	s.loader = lecture.NewLoader(deps.Lectures, deps.Cache)
	s.reconciler = resume.NewReconciler(deps.Enrollments, s.loader)
	s.evaluator = trigger.NewEvaluator(s.store, s.onFired)
	s.notices = notification.NewCenter(opts.NotificationTTL, func(n notification.Notice) {
		s.publish(Message{KindNotification, n})
	})
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) UserID() string {
	return s.cfg.UserID
}

// Start reconcile resume state and apply the initial selection
func (s *Session) Start(ctx context.Context) {
	span, ctx := apm.StartSpan(ctx, "Session.Start", "service")
	defer span.End()

	decision := s.reconciler.Reconcile(ctx, s.cfg.Sections, s.cfg.EnrollmentID)
	if decision.Prompt != nil {
		p := resume.NewPrompt(*decision.Prompt, s.opts.ResumePromptTTL, func(p *resume.Prompt) {
			s.logger.Debug("resume prompt expired")
			s.publishPrompt(p)
		})
		s.mu.Lock()
		s.prompt = p
		s.mu.Unlock()
		s.publishPrompt(p)
	}
	s.apply(decision.Initial)
}

// SelectLecture switch to lectureID of sectionID from the beginning
func (s *Session) SelectLecture(ctx context.Context, sectionID, lectureID string) (resume.Selection, error) {
	span, ctx := apm.StartSpan(ctx, "Session.SelectLecture", "service")
	defer span.End()

	lc, err := s.loader.Find(ctx, sectionID, lectureID)
	if err != nil {
		return resume.Selection{}, err
	}
	sel := resume.Selection{SectionID: sectionID, LectureID: lc.ID, VideoURL: lc.VideoURL}
	s.apply(sel)
	return sel, nil
}

// Lectures ordered lectures of sectionID
func (s *Session) Lectures(ctx context.Context, sectionID string) ([]*domain.LectureModel, error) {
	return s.loader.Lectures(ctx, sectionID)
}

// apply set lecture and start offset in one update, everything keyed by the previous lecture is dropped
func (s *Session) apply(sel resume.Selection) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	if s.lectureCancel != nil {
		s.lectureCancel()
	}
	s.lectureCtx, s.lectureCancel = context.WithCancel(context.Background())
	lectureCtx := s.lectureCtx

	s.selection = sel
	s.store.Reset()
	s.observer = nil
	if sel.Empty() {
		s.persister.Stop()
	} else {
		s.observer = playback.Mount(sel.LectureID, &remoteMedia{s, sel.LectureID}, sel.StartTime, s.progressFunc(gen))
		s.persister.Start(s.cfg.UserID, sel.LectureID, s.observer)
	}
	s.lastActive = time.Now()
	s.mu.Unlock()

	s.logger.Debug("lecture selected",
		zap.String("section.id", sel.SectionID),
		zap.String("lecture.id", sel.LectureID),
		zap.Float64("lecture.start_time", sel.StartTime),
	)
	s.publish(Message{KindLecture, sel})
	if !sel.Empty() {
		go s.loadTriggers(lectureCtx, gen, sel.LectureID)
	}
}

func (s *Session) loadTriggers(ctx context.Context, gen uint64, lectureID string) {
	events, err := s.deps.Events.GetEventsForLecture(ctx, lectureID)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("failed to fetch lecture events", zap.Error(err), zap.String("lecture.id", lectureID))
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	triggers := trigger.FromEvents(events)
	s.store.Load(lectureID, triggers)
	s.logger.Debug("lecture triggers loaded", zap.String("lecture.id", lectureID), zap.Int("trigger.count", len(triggers)))
}

// progressFunc tick path of the observer mounted for gen
func (s *Session) progressFunc(gen uint64) playback.ProgressFunc {
	return func(state playback.ProgressState) {
		s.mu.Lock()
		current := s.generation == gen
		s.mu.Unlock()
		if current {
			s.evaluator.Evaluate(state.PlayedSeconds)
		}
	}
}

// onFired runs on the tick path, the detail fetch is dispatched separately
func (s *Session) onFired(f trigger.Fired) {
	s.mu.Lock()
	gen, ctx := s.generation, s.lectureCtx
	current := s.selection.LectureID == f.LectureID
	s.mu.Unlock()
	if !current {
		return
	}

	noticeID := eventlog.EntryID(f.Type, f.Action)
	s.logger.Debug("trigger fired",
		zap.String("lecture.id", f.LectureID),
		zap.Stringer("event.type", f.Type),
		zap.String("event.payload", f.Action),
		zap.Float64("event.time", f.Time),
	)
	s.publish(Message{KindTrigger, f})
	s.notices.Show(notification.Notice{
		ID:        noticeID,
		LectureID: f.LectureID,
		Type:      f.Type,
		Payload:   f.Action,
		Status:    notification.Loading,
	})
	go s.resolveDetail(ctx, gen, f, noticeID)
}

func (s *Session) resolveDetail(ctx context.Context, gen uint64, f trigger.Fired, noticeID string) {
	var (
		detail *domain.ContentDetailModel
		err    error
	)
	switch f.Type {
	case trigger.Code:
		detail, err = s.deps.Details.GetCodeExerciseDetail(ctx, f.Action)
	case trigger.Quiz:
		detail, err = s.deps.Details.GetQuizDetail(ctx, f.Action)
	}

	s.mu.Lock()
	stale := s.generation != gen
	s.mu.Unlock()
	if stale {
		// the notice opened for this fetch must not stay loading
		s.notices.Fail(noticeID, f.LectureID)
		s.logger.Debug("discarded detail of a previous lecture", zap.String("lecture.id", f.LectureID))
		return
	}

	var title string
	switch {
	case err != nil:
		s.logger.Warn("failed to fetch event detail", zap.Error(err),
			zap.Stringer("event.type", f.Type),
			zap.String("event.payload", f.Action),
		)
		s.notices.Update(noticeID, "", notification.Failed)
		s.notices.Hide()
	case detail != nil:
		title = detail.Title
		s.notices.Update(noticeID, title, notification.Ready)
	default:
		s.notices.Update(noticeID, "", notification.Ready)
	}
	s.events.Append(f.Type, f.Action, title)
}

// Ready the player of lectureID can seek
func (s *Session) Ready(lectureID string) error {
	o, err := s.activeObserver(lectureID)
	if err != nil {
		return err
	}
	return o.Ready()
}

// TimeUpdate native time update of the player showing lectureID
func (s *Session) TimeUpdate(lectureID string, seconds float64) error {
	o, err := s.activeObserver(lectureID)
	if err != nil {
		return err
	}
	o.TimeUpdate(seconds)
	return nil
}

// Seek ask the player showing lectureID to jump
func (s *Session) Seek(lectureID string, seconds float64) error {
	o, err := s.activeObserver(lectureID)
	if err != nil {
		return err
	}
	return o.Seek(seconds)
}

// activeObserver observer of the selected lecture, signals of any other lecture are late and rejected
func (s *Session) activeObserver(lectureID string) (*playback.Observer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	if s.observer == nil {
		return nil, domain.ErrNoActiveLecture
	}
	if lectureID != s.selection.LectureID || lectureID != s.observer.LectureID() {
		return nil, domain.ErrStaleLecture
	}
	return s.observer, nil
}

// ConfirmResume continue watching, lecture and offset are applied together
func (s *Session) ConfirmResume() (resume.Selection, error) {
	p := s.pendingPrompt()
	if p == nil {
		return resume.Selection{}, domain.ErrNoPendingPrompt
	}
	sel, err := p.Confirm()
	if err != nil {
		return resume.Selection{}, err
	}
	s.publishPrompt(p)
	s.apply(sel)
	return sel, nil
}

// DeclineResume dismiss the prompt, the current selection stays
func (s *Session) DeclineResume() error {
	p := s.pendingPrompt()
	if p == nil {
		return domain.ErrNoPendingPrompt
	}
	if err := p.Decline(); err != nil {
		return err
	}
	s.publishPrompt(p)
	return nil
}

func (s *Session) pendingPrompt() *resume.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return s.prompt
}

// SetNotificationVisible show or hide the current notice, false when there is nothing to show
func (s *Session) SetNotificationVisible(visible bool) bool {
	if visible {
		return s.notices.Reshow()
	}
	return s.notices.Hide()
}

// Events event log, newest first
func (s *Session) Events() []eventlog.Entry {
	return s.events.NewestFirst()
}

// Outbox messages for the page, closed by Close
func (s *Session) Outbox() <-chan Message {
	return s.outbox
}

// LastActive time of the last page interaction
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close flush the current position and release every task
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	if s.lectureCancel != nil {
		s.lectureCancel()
	}
	p := s.prompt
	s.mu.Unlock()

	s.persister.Flush(ctx)
	s.persister.Stop()
	s.notices.Close()
	if p != nil {
		p.Close()
	}

	s.outMu.Lock()
	s.done = true
	close(s.outbox)
	s.outMu.Unlock()
	s.logger.Debug("session closed")
}

func (s *Session) publishPrompt(p *resume.Prompt) {
	s.publish(Message{KindResumePrompt, PromptView{p.State(), p.Candidate()}})
}

// publish never blocks, a full outbox drops the message
func (s *Session) publish(m Message) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.done {
		return
	}
	select {
	case s.outbox <- m:
	default:
		s.logger.Warn("session outbox full, message dropped", zap.String("message.kind", string(m.Kind)))
	}
}

// remoteMedia the page's player, seeks become outbox commands
type remoteMedia struct {
	s         *Session
	lectureID string
}

func (m *remoteMedia) Seek(seconds float64) error {
	m.s.publish(Message{KindSeek, SeekCommand{m.lectureID, seconds}})
	return nil
}
