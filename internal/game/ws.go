package game

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"example.com/wordlink/internal/apperr"
	"github.com/gorilla/websocket"
)

const (
	wsPingEvery = 25 * time.Second
	wsPongWait  = 60 * time.Second
	wsSendQueue = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type clientConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func (c *clientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// writeLoop owns every write on the socket.
func (c *clientConn) writeLoop() {
	ticker := time.NewTicker(wsPingEvery)
	defer func() {
		ticker.Stop()
		close(c.done)
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendEnvelope drops the message once the writer has stopped.
func (c *clientConn) sendEnvelope(typ string, payload any) {
	select {
	case c.send <- mustJSON(Envelope{Type: typ, Payload: mustJSON(payload)}):
	case <-c.done:
	}
}

func (c *clientConn) sendError(code, msg string) {
	c.sendEnvelope(MsgError, ErrorPayload{Code: code, Message: msg})
}

// handleWS plays one session over a WebSocket: /ws/sessions/{id}.
// Messages from one connection are handled in order; the service serializes across connections.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(r.PathValue("id"))
	if !ok {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	sess, err := s.games.GetSession(r.Context(), id)
	if err != nil {
		status, _, msg := apperr.Public(err)
		http.Error(w, msg, status)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "sessionId", id, "err", err)
		return
	}

	cc := &clientConn{
		ws:   ws,
		send: make(chan []byte, wsSendQueue),
		done: make(chan struct{}),
	}
	go cc.writeLoop()
	defer cc.Close()

	_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	s.log.Info("websocket attached", "sessionId", id)
	cc.sendEnvelope(MsgState, sess)

	ctx := context.WithoutCancel(r.Context())
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}
		_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			cc.sendError("bad_json", "invalid json")
			continue
		}

		switch env.Type {
		case MsgSubmitGuess:
			var p SubmitGuessPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				cc.sendError("bad_input", "invalid payload")
				continue
			}
			s.wsGuess(ctx, cc, id, p.Words)

		case MsgGetState:
			cur, err := s.games.GetSession(ctx, id)
			if err != nil {
				s.wsFail(cc, id, err)
				continue
			}
			cc.sendEnvelope(MsgState, cur)

		default:
			cc.sendError("unknown_type", "unknown message type")
		}
	}

	s.log.Info("websocket detached", "sessionId", id)
}

func (s *Server) wsGuess(ctx context.Context, cc *clientConn, id string, words []string) {
	out, err := s.games.SubmitGuess(ctx, id, words)
	if err != nil {
		s.wsFail(cc, id, err)
		return
	}
	cur, err := s.games.GetSession(ctx, id)
	if err != nil {
		s.wsFail(cc, id, err)
		return
	}
	cc.sendEnvelope(MsgGuessResult, GuessResultPayload{GuessOutcome: out, Session: cur})
}

func (s *Server) wsFail(cc *clientConn, id string, err error) {
	status, code, msg := apperr.Public(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("websocket request failed", "sessionId", id, "err", err)
	}
	cc.sendError(code, msg)
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
