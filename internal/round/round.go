// internal/round/round.go
//
// Guessing engine for a single hidden word.
//
// Responsibilities:
//   - Copy the lexicon bucket for the word length into a private candidate list.
//   - Keep a live letter tally that always equals the number of surviving
//     candidates containing each letter (sentinel for guessed letters).
//   - Pick the next letter with the configured Policy.
//   - Prune candidates against each revealed pattern in one pass, decrementing
//     the tally for every evicted word as it goes.
//
// A Round is not safe for concurrent use; each goroutine owns its rounds.

package round

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/lexicon"
)

// Round is the mutable state of one hidden word.
type Round struct {
	lex        *lexicon.Lexicon
	length     int
	policy     Policy
	candidates []lexicon.Word
	counts     lexicon.Counts
	revealed   []byte
	lastGuess  byte
	guesses    int
	misses     int
	state      State
	fallback   bool
}

// Start opens a round for a hidden word of the given length.
//
// When the lexicon has no word of that length the round falls back to the
// lexicon's global letter counts and never prunes, unless opts.Strict is
// set, in which case ErrNoCandidates is returned.
func Start(lx *lexicon.Lexicon, length int, opts Options) (*Round, error) {
	if length < 1 || length > MaxLength {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidLength, length, MaxLength)
	}
	policy := opts.Policy
	if policy == "" {
		policy = PolicyFrequency
	}
	if !policy.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	r := &Round{
		lex:      lx,
		length:   length,
		policy:   policy,
		revealed: []byte(BlankPattern(length)),
		state:    StateFresh,
	}

	bucket, err := lx.Bucket(length)
	if err != nil {
		if opts.Strict {
			return nil, fmt.Errorf("start round of length %d: %w", length, err)
		}
		r.fallback = true
		r.counts = lx.GlobalCounts()
		log.Warn().Int("length", length).Msg("no dictionary words of this length; guessing by global frequency")
		return r, nil
	}

	r.candidates = slices.Clone(bucket)
	r.counts = lx.MasterCounts(length)
	return r, nil
}

// Guess returns the next letter and marks it as decided.
func (r *Round) Guess() (byte, error) {
	switch {
	case r.state.Over():
		return 0, ErrRoundOver
	case r.state == StateObserving:
		return 0, ErrAwaitingObservation
	}

	i, ok := r.policy.pick(&r.counts, r.mass())
	if !ok {
		return 0, ErrLettersExhausted
	}
	r.counts[i] = Sentinel
	r.lastGuess = byte('a' + i)
	r.guesses++
	r.state = StateObserving
	return r.lastGuess, nil
}

// Observe applies the pattern revealed after the last guess.
//
// A candidate survives only if it agrees with every revealed position and
// does not hold the last guessed letter at any blank position. This one
// positional rule covers both hits and misses.
func (r *Round) Observe(p Pattern) error {
	switch {
	case r.state.Over():
		return ErrRoundOver
	case r.state != StateObserving:
		return ErrNoPendingGuess
	}
	if err := r.check(p); err != nil {
		return err
	}

	if !r.fallback {
		r.prune(p)
	}
	copy(r.revealed, p)

	if !p.Reveals(r.lastGuess) {
		r.misses++
	}
	switch {
	case p.Solved():
		r.state = StateSolved
	case r.misses >= MaxMisses:
		r.state = StateExhausted
	default:
		r.state = StateGuessing
	}
	return nil
}

// check rejects patterns that could not follow from the guesses so far:
// wrong length, foreign bytes, a revealed position that changed, or a newly
// revealed position holding anything but the last guess.
func (r *Round) check(p Pattern) error {
	if len(p) != r.length {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidPattern, len(p), r.length)
	}
	for i := 0; i < len(p); i++ {
		c, prev := p[i], r.revealed[i]
		switch {
		case c == Blank:
			if prev != Blank {
				return fmt.Errorf("%w: position %d was revealed as %q", ErrInvalidPattern, i, prev)
			}
		case c < 'a' || c > 'z':
			return fmt.Errorf("%w: byte %q at position %d", ErrInvalidPattern, c, i)
		case prev != Blank && prev != c:
			return fmt.Errorf("%w: position %d changed from %q to %q", ErrInvalidPattern, i, prev, c)
		case prev == Blank && c != r.lastGuess:
			return fmt.Errorf("%w: %q revealed at position %d but last guess was %q", ErrInvalidPattern, c, i, r.lastGuess)
		}
	}
	return nil
}

// prune evicts inconsistent candidates in place and keeps counts in step.
func (r *Round) prune(p Pattern) {
	g := r.lastGuess
	kept := r.candidates[:0]
	for _, w := range r.candidates {
		if consistent(w.Text, p, g) {
			kept = append(kept, w)
			continue
		}
		w.EachLetter(func(i int) {
			if r.counts[i] != Sentinel {
				r.counts[i]--
			}
		})
	}
	clear(r.candidates[len(kept):])
	r.candidates = kept

	if len(kept) == 0 {
		r.degrade()
	}
}

func consistent(s string, p Pattern, guess byte) bool {
	for i := 0; i < len(p); i++ {
		if p[i] == Blank {
			if s[i] == guess {
				return false
			}
		} else if s[i] != p[i] {
			return false
		}
	}
	return true
}

// degrade switches a round whose candidates ran out (hidden word missing
// from the dictionary) to global letter counts, keeping its sentinels.
func (r *Round) degrade() {
	global := r.lex.GlobalCounts()
	for i := range r.counts {
		if r.counts[i] != Sentinel {
			r.counts[i] = global[i]
		}
	}
	r.fallback = true
	log.Warn().
		Int("length", r.length).
		Str("pattern", string(r.revealed)).
		Msg("candidates exhausted; guessing by global frequency")
}

// mass is the number of words the live counts are drawn from.
func (r *Round) mass() int {
	if r.fallback {
		return r.lex.Size()
	}
	return len(r.candidates)
}

// Length is the hidden word length.
func (r *Round) Length() int { return r.length }

// Policy is the scoring policy in use.
func (r *Round) Policy() Policy { return r.policy }

// State is the current lifecycle state.
func (r *Round) State() State { return r.state }

// Fallback reports whether the round guesses from global counts.
func (r *Round) Fallback() bool { return r.fallback }

// Misses counts observed patterns that did not reveal the guessed letter.
func (r *Round) Misses() int { return r.misses }

// Guesses counts letters returned by Guess.
func (r *Round) Guesses() int { return r.guesses }

// Pattern is the most recently observed pattern.
func (r *Round) Pattern() Pattern { return Pattern(r.revealed) }

// LastGuess returns the most recent guess, or false before the first one.
func (r *Round) LastGuess() (byte, bool) { return r.lastGuess, r.guesses > 0 }

// Counts returns a copy of the live letter tally.
func (r *Round) Counts() lexicon.Counts { return r.counts }

// CandidateCount is the number of surviving candidates.
func (r *Round) CandidateCount() int { return len(r.candidates) }

// Candidates lists the surviving words in dictionary order.
func (r *Round) Candidates() []string {
	out := make([]string, len(r.candidates))
	for i, w := range r.candidates {
		out[i] = w.Text
	}
	return out
}
