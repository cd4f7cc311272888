// internal/game/types.go
//
// Core type definitions for the hangman referee.
// Defines:
//   - Status: coarse lifecycle of a referee game (playing/won/lost).
//   - Game: the hidden word plus everything revealed and missed so far.

package game

// Status is the referee's view of a game.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Game holds the state of a single hidden word under evaluation.
type Game struct {
	Answer   string // hidden word, lowercase
	MaxMiss  int    // incorrect guesses allowed (6 under the evaluation protocol)
	revealed []byte // current pattern, round.Blank where unknown
	guessed  [26]bool
	Guesses  int // letters applied so far
	Missed   int // letters that revealed nothing
	Finished bool
	Won      bool
}
