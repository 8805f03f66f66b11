package game

import "example.com/codebreaker/internal/code"

// SessionSnapshot is the serializable session state kept in the session store.
type SessionSnapshot struct {
	SessionID string `json:"sessionId"`
	Owner     string `json:"owner,omitempty"`

	Settings Settings `json:"settings"`
	Secret   string   `json:"secret"`
	Phase    Phase    `json:"phase"`

	History []Attempt `json:"history"`
	Score   int       `json:"score"`
	Won     bool      `json:"won"`
	Message string    `json:"message,omitempty"`
}

func (s *Session) snapshotLocked() SessionSnapshot {
	return SessionSnapshot{
		SessionID: s.id,
		Owner:     s.owner,
		Settings:  s.settings,
		Secret:    string(s.secret),
		Phase:     s.phase,
		History:   append([]Attempt(nil), s.history...),
		Score:     s.score,
		Won:       s.won,
		Message:   s.message,
	}
}

func (s *Session) restoreLocked(snap SessionSnapshot) {
	s.owner = snap.Owner
	s.settings = snap.Settings
	s.secret = code.Secret(snap.Secret)
	s.phase = snap.Phase
	s.history = append([]Attempt(nil), snap.History...)
	s.score = snap.Score
	s.won = snap.Won
	s.message = snap.Message
}

// RestoreSession rebuilds a session from a snapshot. Hooks are not restored.
func RestoreSession(cfg Config, snap SessionSnapshot, src code.Source) *Session {
	if src == nil {
		src = code.NewSource()
	}
	s := &Session{
		id:    snap.SessionID,
		cfg:   cfg,
		src:   src,
		conns: make(map[*ClientConn]struct{}),
	}
	s.restoreLocked(snap)
	return s
}
