// internal/round/policy.go
//
// Letter selection policies.
//
// Both policies read only the live count vector (and the surviving mass for
// entropy), never a sentinel slot, and break ties toward the lowest letter.

package round

import (
	"fmt"
	"math"
	"strings"

	"github.com/robalobadob/hangman/internal/lexicon"
)

// Policy names a scoring rule for Guess.
type Policy string

const (
	// PolicyFrequency picks the letter present in the most candidates.
	PolicyFrequency Policy = "frequency"

	// PolicyEntropy picks the letter whose present/absent answer is expected
	// to remove the most uncertainty about which candidate is hidden.
	PolicyEntropy Policy = "entropy"
)

// ParsePolicy maps a config string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "frequency", "freq":
		return PolicyFrequency, nil
	case "entropy", "info":
		return PolicyEntropy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

func (p Policy) valid() bool {
	return p == PolicyFrequency || p == PolicyEntropy
}

// pick returns the index of the chosen letter, or false when every slot is
// a sentinel. mass is the number of surviving candidates.
func (p Policy) pick(counts *lexicon.Counts, mass int) (int, bool) {
	if p == PolicyEntropy {
		return pickEntropy(counts, mass)
	}
	return pickFrequency(counts)
}

func pickFrequency(counts *lexicon.Counts) (int, bool) {
	best := -1
	for i, c := range counts {
		if c == Sentinel {
			continue
		}
		if best < 0 || c > counts[best] {
			best = i
		}
	}
	return best, best >= 0
}

// pickEntropy maximizes Gain. If no letter carries information (one
// candidate left, or none), it defers to frequency order so the round can
// still fill in letters every candidate shares.
func pickEntropy(counts *lexicon.Counts, mass int) (int, bool) {
	best, bestGain := -1, 0.0
	for i, k := range counts {
		if k == Sentinel {
			continue
		}
		if g := Gain(k, mass); g > bestGain {
			best, bestGain = i, g
		}
	}
	if best < 0 {
		return pickFrequency(counts)
	}
	return best, true
}

// Entropy is the Shannon entropy, in bits, of a uniform choice among n
// candidates.
func Entropy(n int) float64 {
	if n <= 1 {
		return 0
	}
	return math.Log2(float64(n))
}

// ExpectedPosterior is the expected entropy after learning whether a letter
// held by k of n candidates is present: the present branch keeps k
// candidates with probability k/n, the absent branch keeps n-k.
func ExpectedPosterior(k, n int) float64 {
	if n <= 0 {
		return 0
	}
	return (xlog2x(k) + xlog2x(n-k)) / float64(n)
}

// Gain is Entropy(n) - ExpectedPosterior(k, n). Letters held by none or by
// all of the candidates score 0.
func Gain(k, n int) float64 {
	if k <= 0 || k >= n {
		return 0
	}
	return math.Max(0, Entropy(n)-ExpectedPosterior(k, n))
}

func xlog2x(k int) float64 {
	if k <= 0 {
		return 0
	}
	x := float64(k)
	return x * math.Log2(x)
}
