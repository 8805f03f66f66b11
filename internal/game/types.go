package game

import (
	"encoding/json"

	"example.com/codebreaker/internal/code"
)

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// inbound

type AuthPayload struct {
	Token string `json:"token"`
}

type SubmitGuessPayload struct {
	Guess string `json:"guess"`
}

// outbound

// Attempt is one row of the guess history. Never mutated after it is appended.
type Attempt struct {
	Guess string `json:"guess"`
	code.Score
}

type GameFinishedPayload struct {
	Won     bool   `json:"won"`
	Guesses int    `json:"guesses"`
	Secret  string `json:"secret"`
	Message string `json:"message"`
}

type StatePayload struct {
	SessionID string    `json:"sessionId"`
	Phase     Phase     `json:"phase"`
	Settings  Settings  `json:"settings"`
	Symbols   string    `json:"symbols"` // symbols in use
	History   []Attempt `json:"history"`
	Score     int       `json:"score"` // failed guesses
	Won       bool      `json:"won"`
	Message   string    `json:"message,omitempty"`
	Secret    string    `json:"secret,omitempty"` // only once finished
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
