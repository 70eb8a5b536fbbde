package http

import (
	"github.com/labstack/echo/v4"
)

func v1Endpoint(
	SessionHandler *SessionHandler,
	jwtMiddleware echo.MiddlewareFunc,
	requestIDMiddleware echo.MiddlewareFunc,
	traceLoggerMiddleware echo.MiddlewareFunc,
) *endpoint {
	return &endpoint{
		apiVersion:  "api/v1/learning",
		middlewares: []echo.MiddlewareFunc{requestIDMiddleware, traceLoggerMiddleware},
		groups: []*apiGroup{
			{
				prefix:      "/sessions",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware},
				routes: []*route{
					{"POST", "", SessionHandler.HandleCreate, nil},
					{"GET", "/:id", SessionHandler.HandleGet, nil},
					{"DELETE", "/:id", SessionHandler.HandleDelete, nil},
					{"PUT", "/:id/lecture", SessionHandler.HandleSelectLecture, nil},
					{"GET", "/:id/sections/:section_id/lectures", SessionHandler.HandleListLectures, nil},
					{"POST", "/:id/ready", SessionHandler.HandleReady, nil},
					{"POST", "/:id/progress", SessionHandler.HandleProgress, nil},
					{"POST", "/:id/seek", SessionHandler.HandleSeek, nil},
					{"POST", "/:id/resume/confirm", SessionHandler.HandleConfirmResume, nil},
					{"POST", "/:id/resume/decline", SessionHandler.HandleDeclineResume, nil},
					{"GET", "/:id/events", SessionHandler.HandleListEvents, nil},
					{"PUT", "/:id/notification", SessionHandler.HandleSetNotification, nil},
				},
			},
			{
				prefix:      "/ws",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware},
				routes: []*route{
					{"GET", "/sessions/:id", SessionHandler.HandleStream, nil},
				},
			},
		},
	}
}
