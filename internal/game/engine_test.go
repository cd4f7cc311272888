package game

import (
	"errors"
	"testing"
)

func TestNewRejectsBadWords(t *testing.T) {
	for _, w := range []string{"", "   ", "don't", "naïve", "a1"} {
		if _, err := New(w); !errors.Is(err, ErrInvalidWord) {
			t.Errorf("New(%q) err = %v, want ErrInvalidWord", w, err)
		}
	}
	g, err := New(" Cat ")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if g.Answer != "cat" || g.Pattern() != "___" {
		t.Fatalf("answer=%q pattern=%q", g.Answer, g.Pattern())
	}
}

func TestApplyRevealsAllPositions(t *testing.T) {
	g, _ := New("banana")
	hit, st, err := g.Apply('a')
	if err != nil || !hit || st != StatusPlaying {
		t.Fatalf("apply a: hit=%v st=%s err=%v", hit, st, err)
	}
	if g.Pattern() != "_a_a_a" {
		t.Fatalf("pattern = %q", g.Pattern())
	}
	g.Apply('N')
	g.Apply('b')
	if g.Status() != StatusWon || g.Missed != 0 || g.Guesses != 3 {
		t.Fatalf("status=%s missed=%d guesses=%d", g.Status(), g.Missed, g.Guesses)
	}
	if g.Accuracy() != 1 {
		t.Fatalf("accuracy = %v, want 1", g.Accuracy())
	}
}

func TestApplyMisses(t *testing.T) {
	tests := []struct {
		name    string
		letters string
		missed  int
		status  Status
	}{
		{"absent letters", "xyz", 3, StatusPlaying},
		{"repeat counts as miss", "cc", 1, StatusPlaying},
		{"six misses lose", "bdefgh", 6, StatusLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := New("cat")
			for i := 0; i < len(tt.letters); i++ {
				if _, _, err := g.Apply(tt.letters[i]); err != nil {
					t.Fatalf("apply %c: %v", tt.letters[i], err)
				}
			}
			if g.Missed != tt.missed || g.Status() != tt.status {
				t.Fatalf("missed=%d status=%s, want %d %s", g.Missed, g.Status(), tt.missed, tt.status)
			}
		})
	}
}

func TestApplyAfterFinish(t *testing.T) {
	g, _ := New("a")
	g.Apply('a')
	if _, _, err := g.Apply('b'); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("err = %v, want ErrGameFinished", err)
	}
	g2, _ := New("ab")
	if _, _, err := g2.Apply('?'); !errors.Is(err, ErrInvalidGuess) {
		t.Fatalf("err = %v, want ErrInvalidGuess", err)
	}
}

func TestAccuracy(t *testing.T) {
	g, _ := New("cat")
	for _, c := range []byte("xyzc") {
		g.Apply(c)
	}
	if got := g.Accuracy(); got != 0.5 {
		t.Fatalf("accuracy = %v, want 0.5", got)
	}
}
