// internal/eval/eval.go
//
// Evaluation harness: plays a list of hidden words against the guessing
// engine and scores the result the way the course harness does.
//
// Protocol:
//   - Each hidden word gets a fresh round and a referee game.
//   - At most 6 incorrect guesses per word.
//   - Per-word accuracy is 1 - misses/6; aggregate accuracy is the mean × 100.
//   - Time per guess covers both Guess and Observe.
//   - Memory is the peak heap in use sampled before and after the run.
//   - Score = accuracy² / sqrt(secPerGuess × memoryBytes).
//
// Words are played on an errgroup with a bounded worker count. The lexicon is
// shared; rounds never are.

package eval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/lexicon"
	"github.com/robalobadob/hangman/internal/round"
)

var ErrNoHiddenWords = errors.New("eval: no hidden words")

// Options configures Run.
type Options struct {
	Policy  round.Policy
	Strict  bool
	Workers int // <= 0 means GOMAXPROCS

	// OnWord, if set, is called once per finished word. Calls are serialized.
	OnWord func(WordResult)
}

// WordResult is the outcome of one hidden word.
type WordResult struct {
	Word     string        `json:"word"`
	Guesses  int           `json:"guesses"`
	Misses   int           `json:"misses"`
	Solved   bool          `json:"solved"`
	Fallback bool          `json:"fallback,omitempty"`
	Elapsed  time.Duration `json:"elapsedNs"`
	Err      string        `json:"error,omitempty"`
}

// Report aggregates a run.
type Report struct {
	Policy        round.Policy `json:"policy"`
	LexiconDigest string       `json:"lexiconDigest"`
	Words         int          `json:"words"`
	Guesses       int          `json:"guesses"`
	Accuracy      float64      `json:"accuracy"`
	SecPerGuess   float64      `json:"secPerGuess"`
	MemoryBytes   uint64       `json:"memoryBytes"`
	Score         float64      `json:"score"`
	Results       []WordResult `json:"results"`
}

// Run evaluates every non-blank line of hidden against lx.
func Run(ctx context.Context, lx *lexicon.Lexicon, hidden []string, opts Options) (Report, error) {
	words := make([]string, 0, len(hidden))
	for _, h := range hidden {
		if w := strings.ToLower(strings.TrimSpace(h)); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return Report{}, ErrNoHiddenWords
	}
	if opts.Policy == "" {
		opts.Policy = round.PolicyFrequency
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var mem peakHeap
	mem.sample()

	results := make([]WordResult, len(words))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, w := range words {
		i, w := i, w
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := Play(lx, w, opts.Policy, opts.Strict)
			results[i] = res
			if opts.OnWord != nil {
				mu.Lock()
				opts.OnWord(res)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("evaluate: %w", err)
	}
	mem.sample()

	rep := Report{
		Policy:        opts.Policy,
		LexiconDigest: lx.Digest(),
		Words:         len(words),
		MemoryBytes:   mem.peak,
		Results:       results,
	}
	var accSum float64
	var elapsed time.Duration
	for _, r := range results {
		accSum += 1 - float64(r.Misses)/float64(round.MaxMisses)
		rep.Guesses += r.Guesses
		elapsed += r.Elapsed
	}
	rep.Accuracy = accSum * 100 / float64(len(words))
	if rep.Guesses > 0 {
		rep.SecPerGuess = elapsed.Seconds() / float64(rep.Guesses)
	}
	rep.Score = score(rep.Accuracy, rep.SecPerGuess, rep.MemoryBytes)

	log.Info().
		Str("policy", string(rep.Policy)).
		Int("words", rep.Words).
		Float64("accuracy", rep.Accuracy).
		Float64("secPerGuess", rep.SecPerGuess).
		Uint64("memoryBytes", rep.MemoryBytes).
		Float64("score", rep.Score).
		Msg("evaluation finished")
	return rep, nil
}

// Play drives one hidden word to completion. Words the engine cannot play
// (not a–z, or no candidates in strict mode) are charged the full miss budget.
func Play(lx *lexicon.Lexicon, word string, policy round.Policy, strict bool) WordResult {
	res := WordResult{Word: word}

	g, err := game.New(word)
	if err != nil {
		res.Misses, res.Err = round.MaxMisses, err.Error()
		return res
	}
	r, err := round.Start(lx, len(g.Answer), round.Options{Policy: policy, Strict: strict})
	if err != nil {
		res.Misses, res.Err = round.MaxMisses, err.Error()
		return res
	}

	drive(g, r, &res)

	res.Guesses = g.Guesses
	res.Misses = g.Missed
	res.Solved = g.Won
	res.Fallback = r.Fallback()
	return res
}

// guesser is the side of a round the referee talks to.
type guesser interface {
	Guess() (byte, error)
	Observe(p round.Pattern) error
}

// drive alternates guesses and observations until the referee ends the game.
// Any error forfeits the rest of the word.
func drive(g *game.Game, r guesser, res *WordResult) {
	forfeit := func(err error) {
		g.Missed, res.Err = g.MaxMiss, err.Error()
	}
	for !g.Finished {
		start := time.Now()
		c, err := r.Guess()
		res.Elapsed += time.Since(start)
		if err != nil {
			forfeit(err)
			return
		}

		if _, _, err := g.Apply(c); err != nil {
			forfeit(fmt.Errorf("referee rejected %q: %w", c, err))
			return
		}

		start = time.Now()
		err = r.Observe(g.Pattern())
		res.Elapsed += time.Since(start)
		if err != nil {
			forfeit(err)
			return
		}
	}
}

// score mirrors the course formula; unmeasurable runs score 0.
func score(accuracy, secPerGuess float64, memory uint64) float64 {
	denom := math.Sqrt(secPerGuess * float64(memory))
	if denom == 0 {
		return 0
	}
	return accuracy * accuracy / denom
}

type peakHeap struct{ peak uint64 }

func (p *peakHeap) sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapInuse > p.peak {
		p.peak = ms.HeapInuse
	}
}
