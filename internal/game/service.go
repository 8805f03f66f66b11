package game

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ResultRecorder stores the outcome of finished games of signed-in players.
type ResultRecorder interface {
	RecordResult(ctx context.Context, userID string, won bool, guesses int) error
}

const hookTimeout = 5 * time.Second

// SessionService is responsible for:
//   - the in-memory cache of live sessions
//   - restoring sessions from persistence (memory or Redis)
//   - reporting finished games to the ResultRecorder
type SessionService struct {
	mu sync.Mutex
	in map[string]*Session

	cfg     Config
	persist SessionPersistence
	results ResultRecorder // optional
	log     *slog.Logger
}

func NewSessionService(cfg Config, persist SessionPersistence, results ResultRecorder, log *slog.Logger) *SessionService {
	if persist == nil {
		persist = NewInMemorySessionStore()
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionService{
		in:      make(map[string]*Session),
		cfg:     cfg,
		persist: persist,
		results: results,
		log:     log,
	}
}

// Create starts a session. A nil settings uses the configured defaults.
func (s *SessionService) Create(ctx context.Context, sessionID string, settings *Settings, owner string) (*Session, error) {
	st := s.cfg.defaults()
	if settings != nil {
		st = *settings
	}

	sess, err := NewSession(sessionID, s.cfg, st, s.cfg.Source)
	if err != nil {
		return nil, err
	}
	sess.owner = owner
	s.hook(sess)

	sess.mu.Lock()
	snap := sess.snapshotLocked()
	sess.mu.Unlock()
	if err := s.persist.Save(ctx, sessionID, snap); err != nil {
		s.log.Warn("session save failed", "session", sessionID, "err", err)
	}

	s.mu.Lock()
	s.in[sessionID] = sess
	s.mu.Unlock()

	s.log.Debug("session created", "session", sessionID, "length", st.Length, "alphabetSize", st.AlphabetSize)
	return sess, nil
}

func (s *SessionService) GetOrLoad(ctx context.Context, sessionID string) (*Session, bool, error) {
	s.mu.Lock()
	sess, ok := s.in[sessionID]
	s.mu.Unlock()
	if ok {
		return sess, true, nil
	}

	snap, found, err := s.persist.Load(ctx, sessionID)
	if err != nil || !found {
		return nil, false, err
	}

	sess = RestoreSession(s.cfg, snap, s.cfg.Source)
	s.hook(sess)

	s.mu.Lock()
	// another request may have restored it meanwhile
	if cur, ok := s.in[sessionID]; ok {
		s.mu.Unlock()
		return cur, true, nil
	}
	s.in[sessionID] = sess
	s.mu.Unlock()

	s.log.Debug("session restored", "session", sessionID, "phase", snap.Phase)
	return sess, true, nil
}

// Delete drops the session from memory and from persistence. The live
// Session, if any, is closed first so that an in-flight action or an
// attached WebSocket cannot save it back.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess := s.in[sessionID]
	delete(s.in, sessionID)
	s.mu.Unlock()

	if sess != nil {
		sess.close()
	}
	if err := s.persist.Delete(ctx, sessionID); err != nil {
		return err
	}

	// a GetOrLoad racing with us may have restored the old snapshot
	s.mu.Lock()
	again := s.in[sessionID]
	delete(s.in, sessionID)
	s.mu.Unlock()
	if again != nil {
		again.close()
	}

	s.log.Debug("session deleted", "session", sessionID)
	return nil
}

func (s *SessionService) hook(sess *Session) {
	id := sess.id

	// any change of the session saves a snapshot
	sess.onPersist = func(snap SessionSnapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		if err := s.persist.Save(ctx, id, snap); err != nil {
			s.log.Warn("session save failed", "session", id, "err", err)
		}
	}

	sess.onFinish = func(r Result) {
		s.log.Info("game finished", "session", r.SessionID, "won", r.Won, "guesses", r.Guesses)
		if s.results == nil || r.Owner == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		if err := s.results.RecordResult(ctx, r.Owner, r.Won, r.Guesses); err != nil {
			s.log.Warn("record result failed", "session", r.SessionID, "user", r.Owner, "err", err)
		}
	}
}
