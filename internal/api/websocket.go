package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"floorplan/internal/session"
)

const (
	wsBuffer     = 64
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket streams session events as JSON text frames. Events are
// dropped for a client whose buffer is full. The stream ends when the
// session closes or the client disconnects. The subscription is taken
// before the upgrade so no event after the handshake is missed.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	out := make(chan []byte, wsBuffer)
	ended := make(chan struct{})
	unsubscribe := sess.Subscribe(func(ev session.Event) {
		msg, err := json.Marshal(ev)
		if err != nil {
			s.logger.Warn("ws_encode_failed", "session", ev.Session, "event", ev.Type.String(), "error", err)
			return
		}
		select {
		case out <- msg:
		default:
			s.logger.Debug("ws_event_dropped", "session", ev.Session, "event", ev.Type.String())
		}
		if ev.Type == session.EventClosed {
			select {
			case <-ended:
			default:
				close(ended)
			}
		}
	})
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws_upgrade_failed", "session", sess.ID, "error", err)
		return
	}
	defer conn.Close()
	s.logger.Debug("ws_connected", "session", sess.ID, "ip", r.RemoteAddr)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ended:
			s.flush(conn, out)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
				time.Now().Add(wsWriteWait))
			return
		case <-gone:
			s.logger.Debug("ws_disconnected", "session", sess.ID)
			return
		}
	}
}

// flush writes whatever is still buffered.
func (s *Server) flush(conn *websocket.Conn, out <-chan []byte) {
	for {
		select {
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
