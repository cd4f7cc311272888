// internal/lexicon/lexicon.go
//
// Immutable, length-bucketed index over the dictionary.
//
// Responsibilities:
//   - Normalize raw lines (trim, lowercase) and deduplicate them.
//   - Group words by length into sorted buckets.
//   - Precompute per-length "master" letter counts with document-frequency
//     semantics: a word adds at most 1 to each letter it contains.
//   - Fingerprint the word set so evaluation runs can name their dictionary.
//
// Input rules:
//   • Blank lines are ignored.
//   • Lines with anything other than a–z after lowercasing are skipped.
//
// A Lexicon is built once and never mutated, so it can be shared by any
// number of rounds across goroutines.

package lexicon

import (
	"encoding/hex"
	"errors"
	"math/bits"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
)

// Letters is the size of the alphabet every count vector covers.
const Letters = 26

// Counts is a per-letter tally indexed by c - 'a'.
type Counts [Letters]int

var (
	ErrEmptyLexicon = errors.New("lexicon: no words supplied")
	ErrNoCandidates = errors.New("lexicon: no words of requested length")
)

// Word is a dictionary entry with its distinct-letter set precomputed.
type Word struct {
	Text string
	Mask uint32 // bit c set iff letter 'a'+c occurs in Text
}

// Has reports whether letter c (a–z) occurs anywhere in the word.
func (w Word) Has(c byte) bool {
	return w.Mask&(1<<(c-'a')) != 0
}

// EachLetter calls fn once per distinct letter index in the word.
func (w Word) EachLetter(fn func(i int)) {
	for m := w.Mask; m != 0; m &= m - 1 {
		fn(bits.TrailingZeros32(m))
	}
}

// Lexicon holds the buckets and their master counts.
type Lexicon struct {
	buckets map[int][]Word
	master  map[int]Counts
	global  Counts
	size    int
	digest  string
}

// Build indexes lines into a Lexicon. The input slice is not modified.
func Build(lines []string) (*Lexicon, error) {
	set := mapset.NewThreadUnsafeSetWithSize[string](len(lines))
	skipped := 0
	for _, line := range lines {
		w := strings.ToLower(strings.TrimSpace(line))
		if w == "" {
			continue
		}
		if !isAlpha(w) {
			skipped++
			continue
		}
		set.Add(w)
	}
	if set.Cardinality() == 0 {
		return nil, ErrEmptyLexicon
	}

	words := set.ToSlice()
	slices.Sort(words)

	lx := &Lexicon{
		buckets: make(map[int][]Word),
		master:  make(map[int]Counts),
		size:    len(words),
	}
	for _, text := range words {
		w := Word{Text: text, Mask: maskOf(text)}
		n := len(text)
		lx.buckets[n] = append(lx.buckets[n], w)

		counts := lx.master[n]
		w.EachLetter(func(i int) {
			counts[i]++
			lx.global[i]++
		})
		lx.master[n] = counts
	}
	lx.digest = fingerprint(words)

	log.Debug().
		Int("words", lx.size).
		Int("lengths", len(lx.buckets)).
		Int("skipped", skipped).
		Str("digest", lx.digest[:12]).
		Msg("lexicon built")
	return lx, nil
}

// Bucket returns the sorted words of length n. The slice is shared and must
// be treated as read-only; rounds copy it before pruning.
func (lx *Lexicon) Bucket(n int) ([]Word, error) {
	b := lx.buckets[n]
	if len(b) == 0 {
		return nil, ErrNoCandidates
	}
	return b, nil
}

// MasterCounts returns the document-frequency vector for length n.
// The zero vector is returned for lengths with no words.
func (lx *Lexicon) MasterCounts(n int) Counts { return lx.master[n] }

// GlobalCounts sums MasterCounts over every length.
func (lx *Lexicon) GlobalCounts() Counts { return lx.global }

// Size is the number of distinct words indexed.
func (lx *Lexicon) Size() int { return lx.size }

// Digest is the hex BLAKE2b-256 of the sorted, newline-joined word set.
func (lx *Lexicon) Digest() string { return lx.digest }

// Lengths lists every word length present, ascending.
func (lx *Lexicon) Lengths() []int {
	out := make([]int, 0, len(lx.buckets))
	for n := range lx.buckets {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func maskOf(s string) uint32 {
	var m uint32
	for i := 0; i < len(s); i++ {
		m |= 1 << (s[i] - 'a')
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func fingerprint(sorted []string) string {
	h, _ := blake2b.New256(nil) // only errors for oversized keys
	for _, w := range sorted {
		h.Write([]byte(w))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
