package code

import "fmt"

// Secret is the code the player tries to guess.
type Secret string

func (s Secret) Len() int { return len([]rune(string(s))) }

// ValidateSettings checks a (length, alphabetSize) pair before a secret
// is generated from it.
func ValidateSettings(length, alphabetSize int, allowRepeats bool) error {
	if length < 1 {
		return fmt.Errorf("%w: %d (want >= 1)", ErrInvalidLength, length)
	}
	if alphabetSize < 1 || alphabetSize > MaxAlphabetSize {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidAlphabetSize, alphabetSize, MaxAlphabetSize)
	}
	if !allowRepeats && alphabetSize < length {
		return fmt.Errorf("%w: %d symbols cannot fill %d unique positions", ErrAlphabetTooSmall, alphabetSize, length)
	}
	return nil
}

// GenerateSecret draws length symbols from the first alphabetSize symbols
// of the master alphabet. Without allowRepeats a symbol already drawn is
// rejected and drawn again. A nil src uses NewSource.
func GenerateSecret(src Source, length, alphabetSize int, allowRepeats bool) (Secret, error) {
	if err := ValidateSettings(length, alphabetSize, allowRepeats); err != nil {
		return "", err
	}
	if src == nil {
		src = NewSource()
	}

	symbols := MasterAlphabet[:alphabetSize]
	var used [MaxAlphabetSize]bool
	out := make([]byte, 0, length)
	for len(out) < length {
		i := src.IntN(alphabetSize)
		if !allowRepeats && used[i] {
			continue
		}
		used[i] = true
		out = append(out, symbols[i])
	}
	return Secret(out), nil
}
