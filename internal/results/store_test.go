package results

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/hangman/internal/eval"
	"github.com/robalobadob/hangman/internal/round"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestInsertAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	run := FromReport(eval.Report{
		Policy:        round.PolicyEntropy,
		LexiconDigest: "abc",
		Words:         2,
		Guesses:       9,
		Accuracy:      75,
		SecPerGuess:   1e-6,
		MemoryBytes:   4096,
		Score:         87.5,
		Results: []eval.WordResult{
			{Word: "cat", Misses: 2, Guesses: 5, Solved: true},
			{Word: "cat", Misses: 6, Guesses: 7},
		},
	})
	if err := s.Insert(ctx, &run); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if run.ID == "" || run.CreatedAt.IsZero() {
		t.Fatalf("insert did not assign id/createdAt: %+v", run)
	}

	got, err := s.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Policy != "entropy" || got.Words != 2 || got.Accuracy != 75 || got.MemoryBytes != 4096 {
		t.Fatalf("get = %+v", got)
	}
	if len(got.Results) != 2 || !got.Results[0].Solved || got.Results[1].Misses != 6 {
		t.Fatalf("word rows = %+v", got.Results)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	runs := []Run{
		{ID: "low", Score: 1, LexiconDigest: "d1", CreatedAt: base},
		{ID: "high-late", Score: 9, LexiconDigest: "d1", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "high-early", Score: 9, LexiconDigest: "d2", CreatedAt: base.Add(time.Hour)},
	}
	for i := range runs {
		if err := s.Insert(ctx, &runs[i]); err != nil {
			t.Fatalf("insert %s: %v", runs[i].ID, err)
		}
	}

	lb, err := s.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	var ids []string
	for _, r := range lb {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "high-early" || ids[1] != "high-late" || ids[2] != "low" {
		t.Fatalf("leaderboard order = %v", ids)
	}

	top, _ := s.Leaderboard(ctx, 1)
	if len(top) != 1 {
		t.Fatalf("limit ignored: %d rows", len(top))
	}

	d1, err := s.ByDigest(ctx, "d1", 10)
	if err != nil {
		t.Fatalf("by digest: %v", err)
	}
	if len(d1) != 2 || d1[0].ID != "high-late" {
		t.Fatalf("by digest = %+v", d1)
	}
}

func TestReopenSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n); err != nil {
			t.Fatalf("count migrations: %v", err)
		}
		if n != 2 {
			t.Fatalf("migrations recorded = %d, want 2", n)
		}
		db.Close()
	}
}
