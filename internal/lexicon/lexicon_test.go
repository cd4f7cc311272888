package lexicon

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildBucketsAndCounts(t *testing.T) {
	lx, err := Build([]string{"cat", "car", "can", "bat"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := lx.Bucket(3)
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	got := make([]string, len(b))
	for i, w := range b {
		got[i] = w.Text
	}
	if strings.Join(got, ",") != "bat,can,car,cat" {
		t.Fatalf("bucket = %v, want sorted bat,can,car,cat", got)
	}

	want := map[byte]int{'a': 4, 'c': 3, 't': 2, 'b': 1, 'r': 1, 'n': 1}
	counts := lx.MasterCounts(3)
	for c := byte('a'); c <= 'z'; c++ {
		if counts[c-'a'] != want[c] {
			t.Errorf("masterCounts[%c] = %d, want %d", c, counts[c-'a'], want[c])
		}
	}
}

func TestBuildDocumentFrequency(t *testing.T) {
	// "level" has three e's and two l's but counts once for each.
	lx, err := Build([]string{"level", "lever"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	counts := lx.MasterCounts(5)
	if counts['e'-'a'] != 2 {
		t.Errorf("e = %d, want 2", counts['e'-'a'])
	}
	if counts['l'-'a'] != 2 {
		t.Errorf("l = %d, want 2", counts['l'-'a'])
	}
	if counts['r'-'a'] != 1 {
		t.Errorf("r = %d, want 1", counts['r'-'a'])
	}
}

func TestBuildNormalizes(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		size  int
	}{
		{"duplicates collapse", []string{"cat", "cat", "CAT"}, 1},
		{"trims whitespace", []string{"  dog \t", "dog"}, 1},
		{"blank lines ignored", []string{"", "   ", "fox", ""}, 1},
		{"non letters skipped", []string{"it's", "co-op", "héllo", "ok"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, err := Build(tt.lines)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if lx.Size() != tt.size {
				t.Errorf("size = %d, want %d", lx.Size(), tt.size)
			}
		})
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	lines := []string{"Zebra", " apple"}
	if _, err := Build(lines); err != nil {
		t.Fatalf("build: %v", err)
	}
	if lines[0] != "Zebra" || lines[1] != " apple" {
		t.Fatalf("input mutated: %q", lines)
	}
}

func TestBuildEmpty(t *testing.T) {
	for _, lines := range [][]string{nil, {}, {"", "  "}, {"123"}} {
		if _, err := Build(lines); !errors.Is(err, ErrEmptyLexicon) {
			t.Errorf("Build(%q) err = %v, want ErrEmptyLexicon", lines, err)
		}
	}
}

func TestBucketMissingLength(t *testing.T) {
	lx, err := Build([]string{"cat"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := lx.Bucket(7); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("err = %v, want ErrNoCandidates", err)
	}
	if c := lx.MasterCounts(7); c != (Counts{}) {
		t.Fatalf("counts for missing length = %v, want zero", c)
	}
}

func TestMasterCountsInvariant(t *testing.T) {
	lx, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	for _, n := range lx.Lengths() {
		b, _ := lx.Bucket(n)
		var want Counts
		for _, w := range b {
			for c := byte('a'); c <= 'z'; c++ {
				if strings.IndexByte(w.Text, c) >= 0 {
					want[c-'a']++
				}
			}
		}
		if got := lx.MasterCounts(n); got != want {
			t.Errorf("length %d: master = %v, want %v", n, got, want)
		}
	}
}

func TestGlobalCountsSumsLengths(t *testing.T) {
	lx, err := Build([]string{"a", "at", "cat", "tact"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g := lx.GlobalCounts()
	if g['a'-'a'] != 4 || g['t'-'a'] != 3 || g['c'-'a'] != 2 {
		t.Fatalf("global = %v", g)
	}
	if got := lx.Lengths(); len(got) != 4 || got[0] != 1 || got[3] != 4 {
		t.Fatalf("lengths = %v", got)
	}
}

func TestDigestStable(t *testing.T) {
	a, _ := Build([]string{"cat", "dog"})
	b, _ := Build([]string{"DOG", "", "cat", "cat"})
	c, _ := Build([]string{"cat", "cow"})
	if a.Digest() != b.Digest() {
		t.Errorf("digest differs for equal word sets")
	}
	if a.Digest() == c.Digest() {
		t.Errorf("digest equal for different word sets")
	}
	if len(a.Digest()) != 64 {
		t.Errorf("digest length = %d, want 64", len(a.Digest()))
	}
}

func TestLoad(t *testing.T) {
	lx, err := Load(strings.NewReader("Cat\n\nbat\r\ncar\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lx.Size() != 3 {
		t.Fatalf("size = %d, want 3", lx.Size())
	}
}

func TestWordHelpers(t *testing.T) {
	w := Word{Text: "abba", Mask: maskOf("abba")}
	if !w.Has('a') || !w.Has('b') || w.Has('c') {
		t.Fatalf("Has mismatch for %q", w.Text)
	}
	var seen []int
	w.EachLetter(func(i int) { seen = append(seen, i) })
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 1 {
		t.Fatalf("EachLetter = %v, want [0 1]", seen)
	}
}
