package server

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// clientMessage is one form change sent by the page.
type clientMessage struct {
	Type string `json:"type"`
	QueryInput
}

// session is one browser connection. Queries are handled strictly in arrival order.
type session struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	sess := &session{conn: conn, send: make(chan []byte, 4), done: make(chan struct{})}
	log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go sess.writeLoop()
	s.readLoop(ctx, sess)
	log.Debug().Str("remote", r.RemoteAddr).Msg("websocket disconnected")
}

// readLoop runs each query to completion before reading the next message.
func (s *Server) readLoop(ctx context.Context, sess *session) {
	defer close(sess.send)

	sess.conn.SetReadLimit(maxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.reply(ErrorResponse{Type: "error", Message: "malformed message"})
			continue
		}
		if msg.Type != "query" {
			sess.reply(ErrorResponse{Type: "error", Message: "unknown message type " + msg.Type})
			continue
		}

		resp, err := s.run(ctx, msg.QueryInput)
		if err != nil {
			log.Error().Err(err).Str("ticker", msg.Ticker).Msg("dashboard recomputation failed")
			sess.reply(ErrorResponse{Type: "error", Message: err.Error()})
		} else {
			sess.reply(resp)
		}
		_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (sess *session) reply(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode websocket reply")
		return
	}
	select {
	case sess.send <- data:
	case <-sess.done:
	}
}

// writeLoop owns all writes to the connection, including keepalive pings.
func (sess *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sess.conn.Close()
		close(sess.done)
	}()

	for {
		select {
		case data, ok := <-sess.send:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sess.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
