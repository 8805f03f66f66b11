package game

import (
	"errors"
	"net/http"

	"example.com/codebreaker/internal/code"
)

// errorStatus maps domain errors to an HTTP status and a wire error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, code.ErrAlphabetTooSmall):
		return http.StatusUnprocessableEntity, "alphabet_too_small"
	case errors.Is(err, code.ErrGuessLengthMismatch):
		return http.StatusUnprocessableEntity, "guess_length_mismatch"
	case errors.Is(err, code.ErrInvalidLength):
		return http.StatusUnprocessableEntity, "invalid_length"
	case errors.Is(err, code.ErrInvalidAlphabetSize):
		return http.StatusUnprocessableEntity, "invalid_alphabet_size"
	case errors.Is(err, code.ErrSymbolNotInAlphabet):
		return http.StatusUnprocessableEntity, "symbol_not_in_alphabet"
	case errors.Is(err, ErrGameFinished):
		return http.StatusConflict, "game_finished"
	case errors.Is(err, ErrSessionGone):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrNotOwner):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// ErrorCode is the wire code for err ("internal" for unknown errors).
func ErrorCode(err error) string {
	_, c := errorStatus(err)
	return c
}
