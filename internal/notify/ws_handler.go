package notify

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// WSHandler streams hub events to connected views over a WebSocket.
type WSHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(hub *Hub, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			// The tracking page is public; same-origin enforcement happens
			// at the CORS layer, not here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeEvents upgrades the connection and forwards change events as JSON
// frames until the client disconnects.
func (h *WSHandler) ServeEvents(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe()
	defer cancel()

	// Discard inbound frames; the read loop exists only to observe close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
