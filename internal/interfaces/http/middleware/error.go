package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/learning-engine/internal/domain"
	infra "github.com/pot-code/learning-engine/internal/infrastructure"
	"github.com/pot-code/learning-engine/internal/infrastructure/validate"
	"go.uber.org/zap"
)

// ErrorHandlingOption options for error handling
type ErrorHandlingOption struct {
	Logger *zap.Logger
}

// StatusOf http status code for err, 500 for anything unknown
func StatusOf(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrLectureNotFound),
		errors.Is(err, domain.ErrNoNotification):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoActiveLecture),
		errors.Is(err, domain.ErrStaleLecture),
		errors.Is(err, domain.ErrNoPendingPrompt):
		return http.StatusConflict
	}
	var ve *validate.Error
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorHandling turn returned errors and panics from controllers into REST errors
// **DO NOT return error anymore**
func ErrorHandling(options ...*ErrorHandlingOption) echo.MiddlewareFunc {
	logger := zap.NewNop()
	if len(options) > 0 && options[0].Logger != nil {
		logger = options[0].Logger
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (ret error) {
			defer func() {
				if any := recover(); any != nil {
					err, ok := any.(error)
					if !ok {
						err = fmt.Errorf("%v", any)
					}
					logger.Error(err.Error(),
						zap.String("url.path", c.Request().RequestURI),
						zap.String("client.address", c.Request().RemoteAddr),
						zap.String("http.request.method", c.Request().Method),
						zap.Int64("http.request.body.bytes", c.Request().ContentLength),
						zap.Strings("route.params.name", c.ParamNames()),
						zap.Strings("route.params.value", c.ParamValues()),
						zap.String("trace.id", traceID(c)),
					)
					ret = writeError(c, err)
				}
			}()
			if err := next(c); err != nil {
				if StatusOf(err) == http.StatusInternalServerError {
					logger.Error(err.Error(), zap.String("trace.id", traceID(c)), zap.String("url.path", c.Request().RequestURI))
				}
				return writeError(c, err)
			}
			return nil
		}
	}
}

// traceID request id, set by the RequestID middleware once the route group is entered
func traceID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func writeError(c echo.Context, err error) error {
	if c.Response().Committed {
		return nil
	}
	code := StatusOf(err)

	var ve *validate.Error
	if errors.As(err, &ve) {
		return c.JSON(code, infra.NewRESTValidationError(code, "Failed to validate params", ve.Fields).SetTraceID(traceID(c)))
	}
	detail := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		detail = fmt.Sprint(he.Message)
	}
	if code == http.StatusInternalServerError {
		detail = http.StatusText(code)
	}
	return c.JSON(code, infra.NewRESTStandardError(code, detail).SetTraceID(traceID(c)))
}
