package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/flowmodel/pkg/event"
)

const (
	eventBuffer  = 256
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = (pongTimeout * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// events streams every graph event to a WebSocket client as JSON
// {"type": ..., "data": ...}. A client that falls behind by more than
// eventBuffer events misses the overflow.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	send := make(chan event.Event, eventBuffer)
	done := make(chan struct{})

	off := s.graph.On(event.Any, func(ev event.Event) {
		select {
		case send <- ev:
		case <-done:
		default:
			s.logger.Debug("dropping event for slow client", "type", ev.Type)
		}
	})
	defer off()

	go s.readEvents(conn, done)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Debug("websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readEvents drains client frames so control messages are processed, and
// closes done when the connection goes away.
func (s *Server) readEvents(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed", "err", err)
			}
			return
		}
	}
}
