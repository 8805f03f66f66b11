package code

import (
	"fmt"
	"strings"
)

// MasterAlphabet is the fixed ordered symbol set. An active alphabet is
// always a prefix of it.
const MasterAlphabet = "0123456789" +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!@#$%^&*()_+-="

const (
	MaxAlphabetSize = len(MasterAlphabet)

	// MaxLength is the recommended upper bound for a code length.
	MaxLength = 20
)

// Symbols returns the first size symbols of the master alphabet.
func Symbols(size int) (string, error) {
	if size < 1 || size > MaxAlphabetSize {
		return "", fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidAlphabetSize, size, MaxAlphabetSize)
	}
	return MasterAlphabet[:size], nil
}

// ValidateGuess checks that every symbol of guess belongs to the active
// alphabet of the given size.
func ValidateGuess(guess string, alphabetSize int) error {
	symbols, err := Symbols(alphabetSize)
	if err != nil {
		return err
	}
	for _, r := range guess {
		if !strings.ContainsRune(symbols, r) {
			return fmt.Errorf("%w: %q (symbols in use: %s)", ErrSymbolNotInAlphabet, r, symbols)
		}
	}
	return nil
}
