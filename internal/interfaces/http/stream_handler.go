package http

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	infra "github.com/pot-code/learning-engine/internal/infrastructure"
	"github.com/pot-code/learning-engine/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// HandleStream push the session outbox to the page until either side goes away
func (sh *SessionHandler) HandleStream(c echo.Context) error {
	s, err := sh.session(c)
	if err != nil {
		return err
	}
	logger := logging.ExtractLoggerFromContext(c.Request().Context()).With(zap.String("session.id", s.ID()))

	return infra.WithHeartbeat(func(ctx context.Context, conn *websocket.Conn) error {
		outbox := s.Outbox()
		for {
			select {
			case <-ctx.Done():
				return nil
			case m, ok := <-outbox:
				if !ok {
					conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
						infra.WriteDeadline())
					return nil
				}
				if err := infra.WriteJSON(conn, m); err != nil {
					logger.Debug("stream write failed", zap.Error(err))
					return nil
				}
			}
		}
	})(c)
}
