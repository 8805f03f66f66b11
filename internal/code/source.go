package code

import (
	"fmt"
	"math/rand/v2"
)

// Source picks symbol indices. IntN returns a value in [0, n).
//
// A Source shared between sessions must be safe for concurrent use;
// the one returned by NewSource is.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// NewSource returns the default pseudo-random source.
func NewSource() Source { return globalSource{} }

// NewSeededSource returns a reproducible source. Not safe for concurrent use.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SequenceSource replays a fixed list of indices, wrapping around at the
// end. Each value is reduced modulo n. Not safe for concurrent use.
//
// GenerateSecret without repeats needs at least length distinct values
// (mod alphabetSize) in the list; with fewer its rejection loop would spin
// forever, so IntN panics once the list has been replayed maxReplays times.
type SequenceSource struct {
	seq []int
	pos int
}

const maxReplays = 1000

func NewSequenceSource(seq ...int) *SequenceSource {
	return &SequenceSource{seq: seq}
}

func (s *SequenceSource) IntN(n int) int {
	if len(s.seq) == 0 {
		return 0
	}
	if s.pos/len(s.seq) >= maxReplays {
		panic(fmt.Sprintf("code: sequence %v replayed %d times, too few distinct values", s.seq, maxReplays))
	}
	v := s.seq[s.pos%len(s.seq)]
	s.pos++
	if v < 0 {
		v = -v
	}
	return v % n
}
