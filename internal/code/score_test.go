package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreGuess_Examples(t *testing.T) {
	cases := []struct {
		name   string
		secret Secret
		guess  string
		want   Score
	}{
		{name: "repeated guess symbol", secret: "1234", guess: "1123", want: Score{SymbolMatches: 3, PositionMatches: 1}},
		{name: "swapped pair", secret: "AB", guess: "BA", want: Score{SymbolMatches: 2, PositionMatches: 0}},
		{name: "exact", secret: "0123", guess: "0123", want: Score{SymbolMatches: 4, PositionMatches: 4}},
		{name: "nothing shared", secret: "0123", guess: "4567", want: Score{}},
		{name: "repeats on both sides", secret: "1122", guess: "2211", want: Score{SymbolMatches: 4, PositionMatches: 0}},
		{name: "mixed repeats", secret: "0011", guess: "0101", want: Score{SymbolMatches: 4, PositionMatches: 2}},
		{name: "guess repeats a single secret symbol", secret: "1234", guess: "1111", want: Score{SymbolMatches: 1, PositionMatches: 1}},
		{name: "extra copies not credited", secret: "1234", guess: "2222", want: Score{SymbolMatches: 1, PositionMatches: 1}},
		{name: "punctuation symbols", secret: "!@#", guess: "#!@", want: Score{SymbolMatches: 3, PositionMatches: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ScoreGuess(tc.guess, tc.secret)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScoreGuess_LengthMismatch(t *testing.T) {
	for _, guess := range []string{"", "123", "12345"} {
		_, err := ScoreGuess(guess, "1234")
		require.ErrorIs(t, err, ErrGuessLengthMismatch, "guess %q", guess)
		assert.True(t, IsValidation(err))
	}
}

func TestScoreGuess_SelfIsPerfect(t *testing.T) {
	src := NewSeededSource(7)
	for length := 1; length <= MaxLength; length++ {
		secret, err := GenerateSecret(src, length, MaxAlphabetSize, false)
		require.NoError(t, err)

		sc, err := ScoreGuess(string(secret), secret)
		require.NoError(t, err)
		assert.Equal(t, length, sc.PositionMatches)
		assert.Equal(t, length, sc.SymbolMatches)
		assert.True(t, sc.Solved(length))
	}
}

func TestScoreGuess_Invariants(t *testing.T) {
	src := NewSeededSource(42)
	for i := 0; i < 500; i++ {
		length := 1 + src.IntN(8)
		size := 1 + src.IntN(12)
		secret, err := GenerateSecret(src, length, size, true)
		require.NoError(t, err)
		guess, err := GenerateSecret(src, length, size, true)
		require.NoError(t, err)

		sc, err := ScoreGuess(string(guess), secret)
		require.NoError(t, err)
		require.GreaterOrEqual(t, sc.PositionMatches, 0)
		require.LessOrEqual(t, sc.PositionMatches, sc.SymbolMatches)
		require.LessOrEqual(t, sc.SymbolMatches, length)

		// scoring is symmetric in its arguments
		back, err := ScoreGuess(string(secret), guess)
		require.NoError(t, err)
		require.Equal(t, sc, back)

		// reversing both sides keeps position matches
		rev, err := ScoreGuess(reverse(string(guess)), Secret(reverse(string(secret))))
		require.NoError(t, err)
		require.Equal(t, sc.PositionMatches, rev.PositionMatches)
	}
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
