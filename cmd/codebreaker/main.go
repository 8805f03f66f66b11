// Command codebreaker plays one game in the terminal.
//
//	codebreaker -length 4 -symbols 10
//
// Type a guess and press enter. Commands: :settings L N, :resign, :reset, :quit.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"example.com/codebreaker/internal/code"
	"example.com/codebreaker/internal/game"
)

func main() {
	fs := flag.NewFlagSet("codebreaker", flag.ContinueOnError)
	length := fs.Int("length", game.DefaultLength, "code length")
	symbols := fs.Int("symbols", game.DefaultAlphabetSize, fmt.Sprintf("alphabet size (1..%d)", code.MaxAlphabetSize))
	repeats := fs.Bool("repeats", false, "allow repeated symbols in the secret")
	seed := fs.Uint64("seed", 0, "random seed (0 => random)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	var src code.Source
	if *seed != 0 {
		src = code.NewSeededSource(*seed)
	}

	settings := game.Settings{Length: *length, AlphabetSize: *symbols, AllowRepeats: *repeats}
	sess, err := newLocalSession(settings, src)
	if err != nil {
		slog.Error("invalid settings", "err", err)
		os.Exit(2)
	}

	if err := play(os.Stdin, os.Stdout, sess); err != nil {
		slog.Error("input", "err", err)
		os.Exit(1)
	}
}
