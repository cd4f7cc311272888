// internal/round/types.go
//
// Core type definitions for a single hangman round.
// Defines:
//   - Pattern: the revealed word as supplied by the caller after each guess.
//   - State: where a round sits in its guess/observe cycle.
//   - Options: per-round configuration (scoring policy, strictness).
//   - Sentinel errors returned by Start, Guess and Observe.

package round

import (
	"errors"
	"strings"

	"github.com/robalobadob/hangman/internal/lexicon"
)

const (
	// MaxMisses is the evaluation protocol's incorrect-guess budget.
	MaxMisses = 6

	// MaxLength caps the word length a round accepts, dictionary or not.
	MaxLength = 64

	// Blank marks a position whose letter is still unknown.
	Blank = '_'

	// Sentinel fills a count slot once its letter has been guessed.
	Sentinel = -1
)

var (
	ErrInvalidLength       = errors.New("round: invalid word length")
	ErrNoCandidates        = lexicon.ErrNoCandidates
	ErrInvalidPattern      = errors.New("round: invalid pattern")
	ErrLettersExhausted    = errors.New("round: every letter has been guessed")
	ErrRoundOver           = errors.New("round: already solved or exhausted")
	ErrAwaitingObservation = errors.New("round: previous guess not yet observed")
	ErrNoPendingGuess      = errors.New("round: observe called without a pending guess")
	ErrUnknownPolicy       = errors.New("round: unknown policy")
)

// Pattern is a revealed word: one byte per position, either a–z or Blank.
type Pattern string

// BlankPattern returns an all-blank pattern of length n.
func BlankPattern(n int) Pattern {
	return Pattern(strings.Repeat(string(Blank), n))
}

// ParsePattern lowercases s and accepts a space as an alternative blank.
// Validation against a round happens in Observe.
func ParsePattern(s string) Pattern {
	return Pattern(strings.ReplaceAll(strings.ToLower(s), " ", string(Blank)))
}

// Solved reports whether no blanks remain.
func (p Pattern) Solved() bool {
	return strings.IndexByte(string(p), Blank) < 0
}

// Reveals reports whether letter c appears anywhere in p.
func (p Pattern) Reveals(c byte) bool {
	return strings.IndexByte(string(p), c) >= 0
}

// State tracks a round through Fresh → Guessing ⇄ Observing → Solved | Exhausted.
type State string

const (
	StateFresh     State = "fresh"
	StateGuessing  State = "guessing"  // waiting for Guess
	StateObserving State = "observing" // waiting for Observe
	StateSolved    State = "solved"
	StateExhausted State = "exhausted"
)

// Over reports whether the round accepts no further guesses.
func (s State) Over() bool { return s == StateSolved || s == StateExhausted }

// Options configures Start.
type Options struct {
	Policy Policy // empty means PolicyFrequency

	// Strict makes Start fail with ErrNoCandidates instead of falling back
	// to global letter counts when no word has the requested length.
	Strict bool
}
