package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"example.com/codebreaker/internal/code"
)

type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

var (
	ErrGameFinished = errors.New("game already finished")
	ErrNotOwner     = errors.New("session belongs to another player")
	ErrSessionGone  = errors.New("session not found")
)

// Result is reported once per finished game.
type Result struct {
	SessionID string
	Owner     string
	Won       bool
	Guesses   int
}

// Session is one single-player game. All actions are serialized by mu;
// each one runs to completion before the next is accepted.
type Session struct {
	id  string
	mu  sync.Mutex
	cfg Config
	src code.Source

	owner string // user id; "" for anonymous play

	settings Settings
	secret   code.Secret
	phase    Phase
	history  []Attempt
	score    int // failed guesses
	won      bool
	message  string

	conns  map[*ClientConn]struct{}
	closed bool // deleted; no more actions or saves

	onPersist func(SessionSnapshot)
	onFinish  func(Result)
}

// NewSession starts a game with the given settings. A nil src uses code.NewSource.
func NewSession(id string, cfg Config, settings Settings, src code.Source) (*Session, error) {
	if src == nil {
		src = code.NewSource()
	}
	s := &Session{
		id:    id,
		cfg:   cfg,
		src:   src,
		conns: make(map[*ClientConn]struct{}),
	}
	if err := s.startLocked(settings); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Claim binds an anonymous session to userID. Claiming an owned session
// by its owner is a no-op.
func (s *Session) Claim(userID string) error {
	if userID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionGone
	}
	switch s.owner {
	case "":
		s.owner = userID
		s.persistLocked()
		return nil
	case userID:
		return nil
	default:
		return ErrNotOwner
	}
}

// CheckAccess allows anonymous sessions to anyone and owned sessions to their owner only.
func (s *Session) CheckAccess(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner != "" && s.owner != userID {
		return ErrNotOwner
	}
	return nil
}

// ApplySettings regenerates the secret under new settings. Invalid
// settings are rejected and the current game stays untouched.
func (s *Session) ApplySettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionGone
	}
	if s.phase == PhaseFinished {
		return ErrGameFinished
	}
	if err := s.startLocked(settings); err != nil {
		return err
	}

	s.broadcastStateLocked()
	s.persistLocked()
	return nil
}

// SubmitGuess scores guess against the secret and appends it to the history.
func (s *Session) SubmitGuess(guess string) (Attempt, error) {
	guess = strings.TrimSpace(guess)

	s.mu.Lock()
	a, res, err := s.submitGuessLocked(guess)
	onFinish := s.onFinish
	s.mu.Unlock()

	// the finish hook may hit the database; it must not hold up the session
	if res != nil && onFinish != nil {
		onFinish(*res)
	}
	return a, err
}

func (s *Session) submitGuessLocked(guess string) (Attempt, *Result, error) {
	if s.closed {
		return Attempt{}, nil, ErrSessionGone
	}
	if s.phase == PhaseFinished {
		return Attempt{}, nil, ErrGameFinished
	}
	// length first: a short guess is a length problem even if it has bad symbols
	if n := len([]rune(guess)); n != s.settings.Length {
		return Attempt{}, nil, fmt.Errorf("%w: got %d symbols, want %d", code.ErrGuessLengthMismatch, n, s.settings.Length)
	}
	if err := code.ValidateGuess(guess, s.settings.AlphabetSize); err != nil {
		return Attempt{}, nil, err
	}

	sc, err := code.ScoreGuess(guess, s.secret)
	if err != nil {
		return Attempt{}, nil, err
	}

	a := Attempt{Guess: guess, Score: sc}
	s.history = append(s.history, a)

	var res *Result
	if sc.Solved(s.settings.Length) {
		s.won = true
		s.message = fmt.Sprintf("You win in %d guesses!", len(s.history))
		r := s.finishLocked()
		res = &r
	} else {
		s.score++
		s.broadcastStateLocked()
	}

	s.persistLocked()
	return a, res, nil
}

// Resign ends the game without a win and reveals the secret.
func (s *Session) Resign() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionGone
	}
	if s.phase == PhaseFinished {
		s.mu.Unlock()
		return ErrGameFinished
	}
	s.won = false
	s.message = fmt.Sprintf("The secret word was %s. You lost after %d guesses.", s.secret, len(s.history))
	res := s.finishLocked()
	s.persistLocked()
	onFinish := s.onFinish
	s.mu.Unlock()

	if onFinish != nil {
		onFinish(res)
	}
	return nil
}

// Reset starts over with the configured default settings.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionGone
	}
	if err := s.startLocked(s.cfg.defaults()); err != nil {
		return err
	}
	s.broadcastStateLocked()
	s.persistLocked()
	return nil
}

func (s *Session) View() StatePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildStateLocked()
}

// Attach subscribes cc to state broadcasts. A closed session refuses it.
func (s *Session) Attach(cc *ClientConn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionGone
	}
	s.conns[cc] = struct{}{}
	return nil
}

func (s *Session) Detach(cc *ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, cc)
}

// SendTo and SendStateTo are no-ops once the session is closed: its
// connections' send channels are closed by then.
func (s *Session) SendTo(cc *ClientConn, env Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	sendTo(cc, env)
}

func (s *Session) SendStateTo(cc *ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	sendTo(cc, Envelope{Type: "state", Payload: mustJSON(s.buildStateLocked())})
}

// close marks a deleted session: later actions fail with ErrSessionGone,
// nothing is saved anymore and attached connections are dropped.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for cc := range s.conns {
		cc.Close()
	}
	s.conns = make(map[*ClientConn]struct{})
}

// startLocked validates settings and, only if they are valid, replaces
// the secret and clears the round.
func (s *Session) startLocked(settings Settings) error {
	if err := settings.Validate(s.cfg.MaxLength); err != nil {
		return err
	}
	secret, err := code.GenerateSecret(s.src, settings.Length, settings.AlphabetSize, settings.AllowRepeats)
	if err != nil {
		return err
	}

	s.settings = settings
	s.secret = secret
	s.phase = PhasePlaying
	s.history = nil
	s.score = 0
	s.won = false
	s.message = ""
	return nil
}

// finishLocked ends the game and returns the result for the finish hook,
// which the caller runs after releasing mu.
func (s *Session) finishLocked() Result {
	s.phase = PhaseFinished

	s.broadcastStateLocked()
	s.broadcastLocked(Envelope{
		Type: "game_finished",
		Payload: mustJSON(GameFinishedPayload{
			Won:     s.won,
			Guesses: len(s.history),
			Secret:  string(s.secret),
			Message: s.message,
		}),
	})

	return Result{
		SessionID: s.id,
		Owner:     s.owner,
		Won:       s.won,
		Guesses:   len(s.history),
	}
}

func (s *Session) buildStateLocked() StatePayload {
	st := StatePayload{
		SessionID: s.id,
		Phase:     s.phase,
		Settings:  s.settings,
		Symbols:   s.settings.symbols(),
		History:   append([]Attempt{}, s.history...),
		Score:     s.score,
		Won:       s.won,
		Message:   s.message,
	}
	if s.phase == PhaseFinished {
		st.Secret = string(s.secret)
	}
	return st
}

func (s *Session) broadcastStateLocked() {
	s.broadcastLocked(Envelope{Type: "state", Payload: mustJSON(s.buildStateLocked())})
}

func (s *Session) broadcastLocked(env Envelope) {
	for cc := range s.conns {
		sendTo(cc, env)
	}
}

func (s *Session) persistLocked() {
	if s.closed || s.onPersist == nil {
		return
	}
	s.onPersist(s.snapshotLocked())
}

func sendTo(cc *ClientConn, env Envelope) {
	if cc == nil {
		return
	}
	b, _ := json.Marshal(env)
	select {
	case cc.send <- b:
	default:
		// slow reader: drop, the next state message supersedes this one
	}
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
