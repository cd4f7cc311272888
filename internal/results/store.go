package results

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hangman/internal/eval"
)

var ErrNotFound = errors.New("results: run not found")

// Run is one persisted evaluation.
type Run struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Policy        string    `json:"policy"`
	LexiconDigest string    `json:"lexiconDigest"`
	Words         int       `json:"words"`
	Guesses       int       `json:"guesses"`
	Accuracy      float64   `json:"accuracy"`
	SecPerGuess   float64   `json:"secPerGuess"`
	MemoryBytes   int64     `json:"memoryBytes"`
	Score         float64   `json:"score"`
	Results       []WordRow `json:"results,omitempty"`
}

// WordRow is the stored outcome of one hidden word.
type WordRow struct {
	Word    string `json:"word"`
	Misses  int    `json:"misses"`
	Guesses int    `json:"guesses"`
	Solved  bool   `json:"solved"`
}

// FromReport converts an evaluator report into a Run ready for Insert.
func FromReport(rep eval.Report) Run {
	r := Run{
		Policy:        string(rep.Policy),
		LexiconDigest: rep.LexiconDigest,
		Words:         rep.Words,
		Guesses:       rep.Guesses,
		Accuracy:      rep.Accuracy,
		SecPerGuess:   rep.SecPerGuess,
		MemoryBytes:   int64(rep.MemoryBytes),
		Score:         rep.Score,
		Results:       make([]WordRow, len(rep.Results)),
	}
	for i, w := range rep.Results {
		r.Results[i] = WordRow{Word: w.Word, Misses: w.Misses, Guesses: w.Guesses, Solved: w.Solved}
	}
	return r
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert stores r and its word rows in one transaction, filling in ID and
// CreatedAt when they are zero.
func (s *Store) Insert(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO runs
            (id, created_at, policy, lexicon_digest, words, guesses, accuracy, sec_per_guess, memory_bytes, score)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.Format(time.RFC3339Nano), r.Policy, r.LexiconDigest,
		r.Words, r.Guesses, r.Accuracy, r.SecPerGuess, r.MemoryBytes, r.Score,
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_words (run_id, idx, word, misses, guesses, solved) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, w := range r.Results {
		if _, err := stmt.ExecContext(ctx, r.ID, i, w.Word, w.Misses, w.Guesses, w.Solved); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const runColumns = `id, created_at, policy, lexicon_digest, words, guesses, accuracy, sec_per_guess, memory_bytes, score`

// Get loads a run with its word rows.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT word, misses, guesses, solved FROM run_words WHERE run_id=? ORDER BY idx`, id)
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var w WordRow
		if err := rows.Scan(&w.Word, &w.Misses, &w.Guesses, &w.Solved); err != nil {
			return Run{}, err
		}
		r.Results = append(r.Results, w)
	}
	return r, rows.Err()
}

// Leaderboard returns the best runs by score, oldest first among equals.
// Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.list(ctx, `SELECT `+runColumns+` FROM runs
        ORDER BY score DESC, created_at ASC
        LIMIT ?`, limit)
}

// ByDigest lists the most recent runs made against one dictionary.
func (s *Store) ByDigest(ctx context.Context, digest string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.list(ctx, `SELECT `+runColumns+` FROM runs
        WHERE lexicon_digest=?
        ORDER BY created_at DESC
        LIMIT ?`, digest, limit)
}

func (s *Store) list(ctx context.Context, q string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (Run, error) {
	var r Run
	var created string
	if err := row.Scan(&r.ID, &created, &r.Policy, &r.LexiconDigest, &r.Words, &r.Guesses,
		&r.Accuracy, &r.SecPerGuess, &r.MemoryBytes, &r.Score); err != nil {
		return Run{}, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return r, nil
}
