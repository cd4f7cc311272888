package round

import (
	"testing"

	"github.com/robalobadob/hangman/internal/lexicon"
)

// play runs hidden through a fresh round, checking the round's invariants
// after every observation, and returns the letters guessed.
func play(t *testing.T, lx *lexicon.Lexicon, hidden string, p Policy) []byte {
	t.Helper()
	r := mustStart(t, lx, len(hidden), p)
	seen := map[byte]bool{}
	var letters []byte
	for !r.State().Over() {
		before := r.CandidateCount()
		c := guess(t, r)
		if seen[c] {
			t.Fatalf("%s: %c guessed twice", hidden, c)
		}
		seen[c] = true
		letters = append(letters, c)

		observe(t, r, reveal(hidden, r.Pattern(), c))
		if r.CandidateCount() > before {
			t.Fatalf("%s: candidates grew from %d to %d", hidden, before, r.CandidateCount())
		}
		checkCounts(t, r)
		if r.Fallback() {
			t.Fatalf("%s: dictionary word lost from candidates", hidden)
		}
		found := false
		for _, w := range r.Candidates() {
			if w == hidden {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("%s: hidden word evicted after %q", hidden, letters)
		}
	}
	if r.Misses() > MaxMisses {
		t.Fatalf("%s: %d misses", hidden, r.Misses())
	}
	return letters
}

func sampleWords(t *testing.T, lx *lexicon.Lexicon, step int) []string {
	t.Helper()
	var out []string
	for _, n := range lx.Lengths() {
		b, err := lx.Bucket(n)
		if err != nil {
			t.Fatalf("bucket %d: %v", n, err)
		}
		for i := 0; i < len(b); i += step {
			out = append(out, b[i].Text)
		}
	}
	return out
}

func TestRoundInvariants(t *testing.T) {
	lx, err := lexicon.Default()
	if err != nil {
		t.Fatalf("default lexicon: %v", err)
	}
	words := sampleWords(t, lx, 11)
	for _, p := range []Policy{PolicyFrequency, PolicyEntropy} {
		t.Run(string(p), func(t *testing.T) {
			for _, w := range words {
				play(t, lx, w, p)
			}
		})
	}
}

func TestRoundDeterministic(t *testing.T) {
	lx, err := lexicon.Default()
	if err != nil {
		t.Fatalf("default lexicon: %v", err)
	}
	for _, p := range []Policy{PolicyFrequency, PolicyEntropy} {
		for _, w := range sampleWords(t, lx, 37) {
			a, b := play(t, lx, w, p), play(t, lx, w, p)
			if string(a) != string(b) {
				t.Fatalf("%s/%s: %q then %q", p, w, a, b)
			}
		}
	}
}
