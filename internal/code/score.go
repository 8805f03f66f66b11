package code

import "fmt"

// Score is the feedback for one guess.
type Score struct {
	SymbolMatches   int `json:"symbolMatches"`
	PositionMatches int `json:"positionMatches"`
}

// Solved reports whether every position of a code of the given length matched.
func (s Score) Solved(length int) bool {
	return s.PositionMatches == length
}

// ScoreGuess compares guess against secret.
//
// PositionMatches counts equal symbols at equal indices. SymbolMatches is
// PositionMatches plus, for every other guess position, one credit if the
// symbol still has an unconsumed occurrence among the secret's unmatched
// positions. Each secret occurrence is credited at most once.
func ScoreGuess(guess string, secret Secret) (Score, error) {
	g := []rune(guess)
	s := []rune(string(secret))
	if len(g) != len(s) {
		return Score{}, fmt.Errorf("%w: got %d symbols, want %d", ErrGuessLengthMismatch, len(g), len(s))
	}

	var sc Score
	remaining := make(map[rune]int, len(s))
	rest := make([]rune, 0, len(g))

	for i := range s {
		if g[i] == s[i] {
			sc.PositionMatches++
			continue
		}
		remaining[s[i]]++
		rest = append(rest, g[i])
	}

	sc.SymbolMatches = sc.PositionMatches
	for _, r := range rest {
		if remaining[r] > 0 {
			remaining[r]--
			sc.SymbolMatches++
		}
	}
	return sc, nil
}
