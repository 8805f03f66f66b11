package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"example.com/codebreaker/internal/code"
	"example.com/codebreaker/internal/game"
)

// newLocalSession starts the terminal game. Reset and "try again" return
// to the settings chosen on the command line, not to the built-in 4/10.
func newLocalSession(settings game.Settings, src code.Source) (*game.Session, error) {
	return game.NewSession("local", game.Config{Defaults: settings}, settings, src)
}

// play reads guesses and commands from in until :quit or EOF.
func play(in io.Reader, out io.Writer, sess *game.Session) error {
	sc := bufio.NewScanner(in)
	printHeader(out, sess.View())

	for {
		st := sess.View()
		if st.Phase == game.PhaseFinished {
			fmt.Fprintf(out, "%s\nPress enter or :reset to try again, :quit to leave.\n", st.Message)
		} else {
			fmt.Fprintf(out, "guess %d> ", len(st.History)+1)
		}

		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		if st.Phase == game.PhaseFinished && (line == "" || line == ":reset") {
			if err := sess.Reset(); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printHeader(out, sess.View())
			continue
		}

		switch {
		case line == "":
			continue
		case line == ":quit":
			return nil
		case line == ":resign":
			if err := sess.Resign(); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case line == ":reset":
			if err := sess.Reset(); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printHeader(out, sess.View())
		case strings.HasPrefix(line, ":settings"):
			s, err := parseSettings(line, st.Settings)
			if err == nil {
				err = sess.ApplySettings(s)
			}
			if err != nil {
				fmt.Fprintf(out, "settings rejected: %v\n", err)
				continue
			}
			printHeader(out, sess.View())
		case strings.HasPrefix(line, ":"):
			fmt.Fprintf(out, "unknown command %s\n", line)
		default:
			a, err := sess.SubmitGuess(line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%s - correct: %d, correctly positioned: %d\n", a.Guess, a.SymbolMatches, a.PositionMatches)
		}
	}
}

// parseSettings reads ":settings L N"; repeats are kept from cur.
func parseSettings(line string, cur game.Settings) (game.Settings, error) {
	f := strings.Fields(line)
	if len(f) != 3 {
		return game.Settings{}, fmt.Errorf("usage: :settings LENGTH SYMBOLS")
	}
	l, err := strconv.Atoi(f[1])
	if err != nil {
		return game.Settings{}, fmt.Errorf("length: %w", err)
	}
	n, err := strconv.Atoi(f[2])
	if err != nil {
		return game.Settings{}, fmt.Errorf("symbols: %w", err)
	}
	return game.Settings{Length: l, AlphabetSize: n, AllowRepeats: cur.AllowRepeats}, nil
}

func printHeader(out io.Writer, st game.StatePayload) {
	fmt.Fprintf(out, "Code length %d. Symbols in use: %s\n", st.Settings.Length, st.Symbols)
}
