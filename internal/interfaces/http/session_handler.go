package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/learning-engine/internal/domain"
	"github.com/pot-code/learning-engine/internal/eventlog"
	"github.com/pot-code/learning-engine/internal/infrastructure/auth"
	"github.com/pot-code/learning-engine/internal/infrastructure/validate"
	"github.com/pot-code/learning-engine/internal/session"
)

type createSessionRequest struct {
	CourseID     string                 `json:"course_id" validate:"required"`
	EnrollmentID string                 `json:"enrollment_id"`
	Sections     []*domain.SectionModel `json:"sections" validate:"dive,required"`
}

type selectLectureRequest struct {
	SectionID string `json:"section_id" validate:"required"`
	LectureID string `json:"lecture_id" validate:"required"`
}

type readyRequest struct {
	LectureID string `json:"lecture_id" validate:"required"`
}

type progressRequest struct {
	LectureID     string   `json:"lecture_id" validate:"required"`
	PlayedSeconds *float64 `json:"played_seconds" validate:"required,gte=0"`
}

type seekRequest struct {
	LectureID string   `json:"lecture_id" validate:"required"`
	Seconds   *float64 `json:"seconds" validate:"required,gte=0"`
}

type notificationRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

type eventView struct {
	eventlog.Entry
	Target *eventlog.Target `json:"target,omitempty"`
}

// SessionHandler learning session operations of the page
type SessionHandler struct {
	registry  *session.Registry
	validator validate.Validator
	jwtUtil   *auth.JWTUtil
}

// NewSessionHandler create a session controller instance
func NewSessionHandler(
	Registry *session.Registry,
	JWTUtil *auth.JWTUtil,
	Validator validate.Validator,
) *SessionHandler {
	handler := &SessionHandler{Registry, Validator, JWTUtil}
	return handler
}

func (sh *SessionHandler) HandleCreate(c echo.Context) error {
	req := new(createSessionRequest)
	if err := sh.bind(c, req); err != nil {
		return err
	}

	user := sh.jwtUtil.GetContextToken(c).User()
	s, err := sh.registry.Init(c.Request().Context(), session.Config{
		UserID:       user.ID,
		CourseID:     req.CourseID,
		EnrollmentID: req.EnrollmentID,
		Sections:     req.Sections,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s.Snapshot())
}

func (sh *SessionHandler) HandleGet(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

func (sh *SessionHandler) HandleDelete(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	if err := sh.registry.Destroy(c.Request().Context(), s.ID()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (sh *SessionHandler) HandleSelectLecture(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	req := new(selectLectureRequest)
	if err := sh.bind(c, req); err != nil {
		return err
	}

	sel, err := s.SelectLecture(c.Request().Context(), req.SectionID, req.LectureID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sel)
}

func (sh *SessionHandler) HandleListLectures(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	lectures, err := s.Lectures(c.Request().Context(), c.Param("section_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lectures)
}

func (sh *SessionHandler) HandleReady(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	req := new(readyRequest)
	if err := sh.bind(c, req); err != nil {
		return err
	}
	if err := s.Ready(req.LectureID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (sh *SessionHandler) HandleProgress(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	req := new(progressRequest)
	if err := sh.bind(c, req); err != nil {
		return err
	}
	if err := s.TimeUpdate(req.LectureID, *req.PlayedSeconds); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (sh *SessionHandler) HandleSeek(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	req := new(seekRequest)
	if err := sh.bind(c, req); err != nil {
		return err
	}
	if err := s.Seek(req.LectureID, *req.Seconds); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (sh *SessionHandler) HandleConfirmResume(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	sel, err := s.ConfirmResume()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sel)
}

func (sh *SessionHandler) HandleDeclineResume(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	if err := s.DeclineResume(); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (sh *SessionHandler) HandleListEvents(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}

	entries := s.Events()
	views := make([]eventView, 0, len(entries))
	for _, e := range entries {
		v := eventView{Entry: e}
		if t, ok := e.Target(); ok {
			v.Target = &t
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, views)
}

func (sh *SessionHandler) HandleSetNotification(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	req := new(notificationRequest)
	if err := sh.bind(c, req); err != nil {
		return err
	}
	if !s.SetNotificationVisible(*req.Visible) {
		return domain.ErrNoNotification
	}
	return c.NoContent(http.StatusNoContent)
}

// session resolve the path session owned by the token user
func (sh *SessionHandler) session(c echo.Context) (*session.Session, error) {
	user := sh.jwtUtil.GetContextToken(c).User()
	return sh.registry.GetOwned(c.Param("id"), user.ID)
}

func (sh *SessionHandler) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if fields := sh.validator.Struct(req); fields != nil {
		return &validate.Error{Fields: fields}
	}
	return nil
}
