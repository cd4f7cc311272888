// internal/game/engine.go
//
// Referee for a single hidden word.
// Responsibilities:
//   - Hold the hidden word and the pattern revealed so far.
//   - Apply guessed letters: reveal every matching position or count a miss.
//   - Track state transitions: playing → won/lost.
//   - Report per-word accuracy under the evaluation protocol.
//
// Notes:
//   - A letter that was already guessed counts as a miss, as does any letter
//     absent from the word.
//   - The referee is the only component that reads the hidden word; guessers
//     see nothing but Pattern().
package game

import (
	"errors"
	"strings"

	"github.com/robalobadob/hangman/internal/round"
)

var (
	ErrInvalidWord  = errors.New("game: hidden word must be lowercase a-z")
	ErrInvalidGuess = errors.New("game: guess must be a single letter a-z")
	ErrGameFinished = errors.New("game: finished")
)

// New constructs a referee for answer.
func New(answer string) (*Game, error) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" || !isAlpha(answer) {
		return nil, ErrInvalidWord
	}
	return &Game{
		Answer:   answer,
		MaxMiss:  round.MaxMisses,
		revealed: []byte(round.BlankPattern(len(answer))),
	}, nil
}

// Apply reveals letter c, returning whether it was a hit and the new status.
//
// State transitions:
//   - No blanks left → Finished, Won.
//   - Misses reach MaxMiss → Finished (loss).
func (g *Game) Apply(c byte) (bool, Status, error) {
	if g.Finished {
		return false, g.Status(), ErrGameFinished
	}
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	if c < 'a' || c > 'z' {
		return false, g.Status(), ErrInvalidGuess
	}
	g.Guesses++

	hit := false
	if !g.guessed[c-'a'] {
		for i := 0; i < len(g.Answer); i++ {
			if g.Answer[i] == c {
				g.revealed[i] = c
				hit = true
			}
		}
	}
	g.guessed[c-'a'] = true

	if !hit {
		g.Missed++
	}
	if round.Pattern(g.revealed).Solved() {
		g.Finished, g.Won = true, true
	} else if g.Missed >= g.MaxMiss {
		g.Finished = true
	}
	return hit, g.Status(), nil
}

// Pattern is the word as revealed so far.
func (g *Game) Pattern() round.Pattern { return round.Pattern(g.revealed) }

// Status reports a coarse view of the current game state.
func (g *Game) Status() Status {
	if g.Finished {
		if g.Won {
			return StatusWon
		}
		return StatusLost
	}
	return StatusPlaying
}

// Accuracy is 1 - misses/MaxMiss, the per-word score of the protocol.
func (g *Game) Accuracy() float64 {
	return 1 - float64(g.Missed)/float64(g.MaxMiss)
}

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
