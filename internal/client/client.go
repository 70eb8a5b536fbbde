// Package client talks to the learning platform REST API
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// Config API connection options
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// API resty backed implementation of every platform collaborator
type API struct {
	http *resty.Client
}

var (
	_ domain.LectureEventRepository    = &API{}
	_ domain.ContentDetailRepository   = &API{}
	_ domain.LectureProgressRepository = &API{}
	_ domain.EnrollmentRepository      = &API{}
	_ domain.LectureRepository         = &API{}
)

// StatusError non-2xx response
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return e.Method + " " + e.URL + ": unexpected status " + http.StatusText(e.Code)
}

// New create an API client
func New(cfg *Config) *API {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}
	return &API{http: c}
}

func (a *API) request(ctx context.Context) *resty.Request {
	return a.http.R().SetContext(ctx)
}

func (a *API) check(ctx context.Context, resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	if resp.IsError() {
		req := resp.Request
		logging.ExtractLoggerFromContext(ctx).Debug("platform API error",
			zap.String("http.request.method", req.Method),
			zap.String("url.original", req.URL),
			zap.Int("http.response.status_code", resp.StatusCode()),
		)
		return &StatusError{req.Method, req.URL, resp.StatusCode(), resp.String()}
	}
	return nil
}

func (a *API) getJSON(ctx context.Context, path string, params map[string]string, out interface{}) error {
	resp, err := a.request(ctx).SetPathParams(params).Get(path)
	if err := a.check(ctx, resp, err); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(domain.ErrMalformedPayload, "decode %s: %s", resp.Request.URL, err)
	}
	return nil
}

// GetEventsForLecture implement domain.LectureEventRepository, the payload is {"data": [...]}
func (a *API) GetEventsForLecture(ctx context.Context, lectureID string) ([]*domain.LectureEventModel, error) {
	var envelope struct {
		Data *[]*domain.LectureEventModel `json:"data"`
	}
	if err := a.getJSON(ctx, "lectures/{id}/events", map[string]string{"id": lectureID}, &envelope); err != nil {
		return nil, errors.WithMessagef(err, "events of lecture %s", lectureID)
	}
	if envelope.Data == nil {
		return nil, errors.Wrapf(domain.ErrMalformedPayload, "events of lecture %s: missing data", lectureID)
	}
	return *envelope.Data, nil
}

// GetCodeExerciseDetail implement domain.ContentDetailRepository
func (a *API) GetCodeExerciseDetail(ctx context.Context, exerciseID string) (*domain.ContentDetailModel, error) {
	detail := new(domain.ContentDetailModel)
	if err := a.getJSON(ctx, "code-exercises/{id}", map[string]string{"id": exerciseID}, detail); err != nil {
		return nil, errors.WithMessagef(err, "code exercise %s", exerciseID)
	}
	return detail, nil
}

// GetQuizDetail implement domain.ContentDetailRepository
func (a *API) GetQuizDetail(ctx context.Context, quizID string) (*domain.ContentDetailModel, error) {
	detail := new(domain.ContentDetailModel)
	if err := a.getJSON(ctx, "quizzes/{id}", map[string]string{"id": quizID}, detail); err != nil {
		return nil, errors.WithMessagef(err, "quiz %s", quizID)
	}
	return detail, nil
}

// UpdateLectureProgress implement domain.LectureProgressRepository
func (a *API) UpdateLectureProgress(ctx context.Context, progress *domain.LectureProgressModel) error {
	resp, err := a.request(ctx).SetBody(progress).Put("lectures/progress")
	return errors.WithMessage(a.check(ctx, resp, err), "update lecture progress")
}

// GetRecentLearning implement domain.EnrollmentRepository
func (a *API) GetRecentLearning(ctx context.Context, enrollmentID string) (*domain.RecentLearningModel, error) {
	recent := new(domain.RecentLearningModel)
	if err := a.getJSON(ctx, "enrollments/{id}/recent-learning", map[string]string{"id": enrollmentID}, recent); err != nil {
		return nil, errors.WithMessagef(err, "recent learning of enrollment %s", enrollmentID)
	}
	return recent, nil
}

// GetLecturesForSection implement domain.LectureRepository
func (a *API) GetLecturesForSection(ctx context.Context, sectionID string) ([]*domain.LectureModel, error) {
	var lectures []*domain.LectureModel
	if err := a.getJSON(ctx, "sections/{id}/lectures", map[string]string{"id": sectionID}, &lectures); err != nil {
		return nil, errors.WithMessagef(err, "lectures of section %s", sectionID)
	}
	return lectures, nil
}
