package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, routes map[string]http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(&Config{BaseURL: srv.URL, Token: "secret", Timeout: time.Second})
}

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

func TestGetEventsForLecture(t *testing.T) {
	api := newServer(t, map[string]http.HandlerFunc{
		"GET /lectures/l1/events": reply(`{"data":[{"triggerTime":12.5,"payload":"q1","eventType":"QUIZ"}]}`),
		"GET /lectures/l2/events": reply(`{"data":[]}`),
		"GET /lectures/bad/events": reply(`{"data":{"oops":true}}`),
		"GET /lectures/nil/events": reply(`{}`),
	})
	ctx := context.Background()

	events, err := api.GetEventsForLecture(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, []*domain.LectureEventModel{{TriggerTime: 12.5, Payload: "q1", EventType: "QUIZ"}}, events)

	events, err = api.GetEventsForLecture(ctx, "l2")
	require.NoError(t, err)
	assert.Empty(t, events)

	for _, id := range []string{"bad", "nil"} {
		_, err = api.GetEventsForLecture(ctx, id)
		assert.True(t, errors.Is(err, domain.ErrMalformedPayload), id)
	}
}

func TestNon2xxIsAnError(t *testing.T) {
	api := newServer(t, map[string]http.HandlerFunc{
		"GET /quizzes/q1": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	})

	_, err := api.GetQuizDetail(context.Background(), "q1")
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)

	_, err = api.GetCodeExerciseDetail(context.Background(), "missing")
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestDetails(t *testing.T) {
	api := newServer(t, map[string]http.HandlerFunc{
		"GET /code-exercises/ex1": reply(`{"id":"ex1","title":"FizzBuzz","language":"go"}`),
		"GET /quizzes/q1":         reply(`{"id":"q1","title":"Closures"}`),
	})
	ctx := context.Background()

	ex, err := api.GetCodeExerciseDetail(ctx, "ex1")
	require.NoError(t, err)
	assert.Equal(t, "FizzBuzz", ex.Title)

	quiz, err := api.GetQuizDetail(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "Closures", quiz.Title)
}

func TestUpdateLectureProgress(t *testing.T) {
	var got domain.LectureProgressModel
	api := newServer(t, map[string]http.HandlerFunc{
		"PUT /lectures/progress": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		},
	})

	err := api.UpdateLectureProgress(context.Background(), &domain.LectureProgressModel{UserID: "u1", LectureID: "l1", LastViewAt: "00:01:00"})
	require.NoError(t, err)
	assert.Equal(t, domain.LectureProgressModel{UserID: "u1", LectureID: "l1", LastViewAt: "00:01:00"}, got)
}

func TestRecentLearningAndLectures(t *testing.T) {
	api := newServer(t, map[string]http.HandlerFunc{
		"GET /enrollments/e1/recent-learning": reply(`{"sectionId":"s1","lectureId":"l2","lastViewedAt":"00:10:00","enrollmentProgressPercentage":12.5}`),
		"GET /sections/s1/lectures":           reply(`[{"lectureId":"l1","title":"Intro","position":1,"videoUrl":"l1.mp4"}]`),
	})
	ctx := context.Background()

	recent, err := api.GetRecentLearning(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, &domain.RecentLearningModel{SectionID: "s1", LectureID: "l2", LastViewedAt: "00:10:00", EnrollmentProgressPercentage: 12.5}, recent)

	lectures, err := api.GetLecturesForSection(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []*domain.LectureModel{{ID: "l1", Title: "Intro", Position: 1, VideoURL: "l1.mp4"}}, lectures)
}

func TestCancelledContext(t *testing.T) {
	api := newServer(t, map[string]http.HandlerFunc{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := api.GetRecentLearning(ctx, "e1")
	assert.Error(t, err)
}
