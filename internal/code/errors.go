package code

import "errors"

// Validation errors. Callers match them with errors.Is; the returned
// errors wrap these with the offending values.
var (
	ErrAlphabetTooSmall    = errors.New("alphabet too small")
	ErrGuessLengthMismatch = errors.New("guess length mismatch")
	ErrInvalidLength       = errors.New("invalid code length")
	ErrInvalidAlphabetSize = errors.New("invalid alphabet size")
	ErrSymbolNotInAlphabet = errors.New("symbol not in alphabet")
)

// IsValidation reports whether err is one of the evaluator's validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrAlphabetTooSmall) ||
		errors.Is(err, ErrGuessLengthMismatch) ||
		errors.Is(err, ErrInvalidLength) ||
		errors.Is(err, ErrInvalidAlphabetSize) ||
		errors.Is(err, ErrSymbolNotInAlphabet)
}
