package game

import (
	"fmt"

	"example.com/codebreaker/internal/code"
)

// Settings of one game: code length and how many symbols of the master
// alphabet are in play.
type Settings struct {
	Length       int  `json:"length"`
	AlphabetSize int  `json:"alphabetSize"`
	AllowRepeats bool `json:"allowRepeats"`
}

const (
	DefaultLength       = 4
	DefaultAlphabetSize = 10
)

func DefaultSettings() Settings {
	return Settings{Length: DefaultLength, AlphabetSize: DefaultAlphabetSize}
}

// Validate checks s against the evaluator rules and the length cap.
// maxLength <= 0 means code.MaxLength.
func (s Settings) Validate(maxLength int) error {
	if maxLength <= 0 {
		maxLength = code.MaxLength
	}
	if s.Length > maxLength {
		return fmt.Errorf("%w: %d (want 1..%d)", code.ErrInvalidLength, s.Length, maxLength)
	}
	return code.ValidateSettings(s.Length, s.AlphabetSize, s.AllowRepeats)
}

func (s Settings) symbols() string {
	sym, _ := code.Symbols(s.AlphabetSize)
	return sym
}
