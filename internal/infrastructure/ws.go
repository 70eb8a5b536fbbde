package infra

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	HandshakeTimeout: 3 * time.Second,
}

var (
	writeWait    = 10 * time.Second
	pongWait     = 30 * time.Second
	pingInterval = pongWait * 9 / 10
)

// StreamFunc writes to conn until ctx is done, ctx ends when the peer goes away
type StreamFunc func(ctx context.Context, conn *websocket.Conn) error

// WithHeartbeat wrap handler function with heartbeat probe
func WithHeartbeat(handler StreamFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			// upgrader has already replied
			return nil
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request().Context())
		defer cancel()
		go readRoutine(conn, cancel)
		go heartbeatRoutine(ctx, conn, cancel)

		if err := handler(ctx, conn); err != nil && ctx.Err() == nil {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()),
				WriteDeadline())
		}
		return nil
	}
}

// WriteDeadline deadline for a write started now
func WriteDeadline() time.Time {
	return time.Now().Add(writeWait)
}

// WriteJSON write v with the write deadline applied
func WriteJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(WriteDeadline())
	return conn.WriteJSON(v)
}

// readRoutine pumps control frames so pongs and close frames are processed
func readRoutine(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func heartbeatRoutine(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, WriteDeadline()); err != nil {
				cancel()
				return
			}
		}
	}
}
