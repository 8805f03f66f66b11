package game

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	sendBuffer   = 64
	pingInterval = 25 * time.Second
)

type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{ws: ws, send: make(chan []byte, sendBuffer)}
}

func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// handleWS is the WebSocket entry into a session: /ws/{sessionId}.
// A bearer token is optional; it can come in the Authorization header or
// in an "auth" message and binds the session to the player.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromWSPath(r.URL.Path)
	if !ok {
		http.Error(w, "missing or invalid session id", http.StatusBadRequest)
		return
	}

	userID, ok := s.optionalUser(w, r)
	if !ok {
		return
	}

	sess, found, err := s.sessions.GetOrLoad(r.Context(), sessionID)
	if err != nil {
		s.log.Error("session load failed", "session", sessionID, "err", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err := sess.Claim(userID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	if err := sess.CheckAccess(userID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	cc := newClientConn(ws)
	if err := sess.Attach(cc); err != nil {
		// deleted between lookup and upgrade
		_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session deleted"))
		cc.Close()
		return
	}
	s.log.Debug("ws attached", "session", sessionID)

	// writer loop
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case msg, ok := <-cc.send:
				if !ok {
					return
				}
				_ = ws.WriteMessage(websocket.TextMessage, msg)
			case <-ticker.C:
				_ = ws.WriteMessage(websocket.PingMessage, []byte{})
			}
		}
	}()

	// initial state
	sess.SendStateTo(cc)

	// reader loop
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			sendError(sess, cc, "bad_json", "invalid json")
			continue
		}
		s.dispatch(sess, cc, env)
	}

	// disconnect
	sess.Detach(cc)
	cc.Close()
	s.log.Debug("ws detached", "session", sessionID)
}

func (s *Server) dispatch(sess *Session, cc *ClientConn, env Envelope) {
	switch env.Type {
	case "auth":
		var p AuthPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.Token == "" {
			sendError(sess, cc, "bad_input", "invalid payload")
			return
		}
		if s.verifier == nil {
			sendError(sess, cc, "unauthorized", "authentication is disabled")
			return
		}
		claims, err := s.verifier.Verify(p.Token)
		if err != nil {
			sendError(sess, cc, "unauthorized", "invalid token")
			return
		}
		if err := sess.Claim(claims.UserID); err != nil {
			sendError(sess, cc, ErrorCode(err), err.Error())
			return
		}
		sess.SendStateTo(cc)

	case "apply_settings":
		var p Settings
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			sendError(sess, cc, "bad_input", "invalid payload")
			return
		}
		if err := sess.ApplySettings(p); err != nil {
			sendError(sess, cc, ErrorCode(err), err.Error())
		}

	case "submit_guess":
		var p SubmitGuessPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			sendError(sess, cc, "bad_input", "invalid payload")
			return
		}
		a, err := sess.SubmitGuess(p.Guess)
		if err != nil {
			sendError(sess, cc, ErrorCode(err), err.Error())
			return
		}
		sess.SendTo(cc, Envelope{Type: "guess_result", Payload: mustJSON(a)})

	case "resign":
		if err := sess.Resign(); err != nil {
			sendError(sess, cc, ErrorCode(err), err.Error())
		}

	case "reset":
		if err := sess.Reset(); err != nil {
			sendError(sess, cc, ErrorCode(err), err.Error())
		}

	default:
		sendError(sess, cc, "unknown_type", "unknown message type")
	}
}

func sendError(sess *Session, cc *ClientConn, errCode, msg string) {
	sess.SendTo(cc, Envelope{
		Type:    "error",
		Payload: mustJSON(ErrorPayload{Code: errCode, Message: msg}),
	})
}

// sessionIDFromWSPath extracts {id} from /ws/{id}.
func sessionIDFromWSPath(path string) (string, bool) {
	id, ok := strings.CutPrefix(path, "/ws/")
	if !ok || !validSessionID(id) {
		return "", false
	}
	return id, true
}

// validSessionID accepts 1..64 chars of [a-z0-9].
func validSessionID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
