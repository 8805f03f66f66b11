package game

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"example.com/codebreaker/internal/auth"
	"example.com/codebreaker/internal/code"
	"example.com/codebreaker/internal/httpapi"
	"github.com/google/uuid"
)

type Config struct {
	Defaults  Settings    // zero value => DefaultSettings()
	MaxLength int         // 0 => code.MaxLength
	Source    code.Source // nil => code.NewSource(); shared by all sessions
}

func (c Config) defaults() Settings {
	if c.Defaults == (Settings{}) {
		return DefaultSettings()
	}
	return c.Defaults
}

// TokenVerifier checks bearer tokens. *auth.Service implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type Server struct {
	cfg      Config
	sessions *SessionService
	verifier TokenVerifier // optional; nil => anonymous play only
	log      *slog.Logger
}

func NewServer(cfg Config, sessions *SessionService, verifier TokenVerifier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		verifier: verifier,
		log:      log,
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/games", s.handleCreate)
	mux.HandleFunc("GET /api/games/{id}", s.withSession(s.handleState))
	mux.HandleFunc("DELETE /api/games/{id}", s.withSession(s.handleDelete))
	mux.HandleFunc("POST /api/games/{id}/settings", s.withSession(s.handleSettings))
	mux.HandleFunc("POST /api/games/{id}/guesses", s.withSession(s.handleGuess))
	mux.HandleFunc("POST /api/games/{id}/resign", s.withSession(s.handleResign))
	mux.HandleFunc("POST /api/games/{id}/reset", s.withSession(s.handleReset))
	mux.HandleFunc("/ws/", s.handleWS)
}

type createResponse struct {
	SessionID string       `json:"sessionId"`
	State     StatePayload `json:"state"`
}

type guessResponse struct {
	Attempt Attempt      `json:"attempt"`
	State   StatePayload `json:"state"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.optionalUser(w, r)
	if !ok {
		return
	}

	var settings *Settings
	if r.ContentLength != 0 {
		var st Settings
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil && !errors.Is(err, io.EOF) {
			httpapi.WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
			return
		} else if err == nil {
			settings = &st
		}
	}

	sessionID := newSessionID()
	sess, err := s.sessions.Create(r.Context(), sessionID, settings, userID)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusCreated, createResponse{SessionID: sessionID, State: sess.View()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, sess *Session) {
	httpapi.WriteJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := s.sessions.Delete(r.Context(), sess.ID()); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, sess *Session) {
	var st Settings
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if err := sess.ApplySettings(st); err != nil {
		s.writeErr(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request, sess *Session) {
	var p SubmitGuessPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	a, err := sess.SubmitGuess(p.Guess)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, guessResponse{Attempt: a, State: sess.View()})
}

func (s *Server) handleResign(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := sess.Resign(); err != nil {
		s.writeErr(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := sess.Reset(); err != nil {
		s.writeErr(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, sess.View())
}

// withSession resolves {id}, checks ownership and hands the session to h.
func (s *Server) withSession(h func(http.ResponseWriter, *http.Request, *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !validSessionID(id) {
			httpapi.WriteError(w, http.StatusBadRequest, "bad_request", "invalid session id")
			return
		}

		userID, ok := s.optionalUser(w, r)
		if !ok {
			return
		}

		sess, found, err := s.sessions.GetOrLoad(r.Context(), id)
		if err != nil {
			s.log.Error("session load failed", "session", id, "err", err)
			httpapi.WriteError(w, http.StatusInternalServerError, "storage_error", "storage error")
			return
		}
		if !found {
			httpapi.WriteError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		if err := sess.CheckAccess(userID); err != nil {
			s.writeErr(w, err)
			return
		}
		h(w, r, sess)
	}
}

// optionalUser returns the user id of a valid bearer token, "" without
// one. An invalid token is rejected with 401.
func (s *Server) optionalUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", true
	}
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || s.verifier == nil {
		httpapi.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization header")
		return "", false
	}
	claims, err := s.verifier.Verify(token)
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		return "", false
	}
	return claims.UserID, true
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status, errCode := errorStatus(err)
	if status == http.StatusInternalServerError {
		httpapi.WriteInternal(w, s.log, "internal error", err)
		return
	}
	httpapi.WriteError(w, status, errCode, err.Error())
}

func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
