// internal/httpserver/server.go
//
// HTTP server wiring for the hangman guessing engine.
// Responsibilities:
//   - Router + middleware (JSON, request IDs, panic recovery, timeouts).
//   - Public endpoints: "/", "/health", "/lexicon".
//   - Round driver endpoints: POST /rounds, POST /rounds/{id}/guess,
//     POST /rounds/{id}/observe, DELETE /rounds/{id}.
//   - Evaluation endpoints (bearer auth when a secret is configured): mounted
//     under /eval and /runs.
//
// Notes:
//   - The lexicon is built once and shared by every round.
//   - Each round lives in the store behind its own lock, so concurrent
//     requests against one round are applied one at a time.
//   - Idle rounds are swept periodically while the server runs.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/lexicon"
	"github.com/robalobadob/hangman/internal/results"
	"github.com/robalobadob/hangman/internal/round"
	"github.com/robalobadob/hangman/internal/store"
)

// Config holds the per-server options.
type Config struct {
	Policy    round.Policy  // default policy for new rounds and evaluations
	Strict    bool          // fail rounds whose length has no dictionary words
	JWTSecret string        // empty disables auth on /eval and /runs
	Workers   int           // evaluator worker limit
	RoundTTL  time.Duration // idle rounds older than this are dropped
}

// Server bundles router, lexicon, round store and run history.
type Server struct {
	r     *chi.Mux
	lex   *lexicon.Lexicon
	store store.Store
	runs  *results.Store // nil disables persistence
	cfg   Config
}

// New constructs a Server, installs middleware, and registers routes.
func New(lx *lexicon.Lexicon, st store.Store, runs *results.Store, cfg Config) *Server {
	if cfg.Policy == "" {
		cfg.Policy = round.PolicyFrequency
	}
	if cfg.RoundTTL <= 0 {
		cfg.RoundTTL = 30 * time.Minute
	}
	s := &Server{r: chi.NewRouter(), lex: lx, store: st, runs: runs, cfg: cfg}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"hangman","endpoints":["/health","/lexicon","POST /rounds","POST /eval","/runs"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/lexicon", s.handleLexicon)

	// Round driver, short-lived requests
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Post("/rounds", s.handleStart)
		r.Post("/rounds/{id}/guess", s.handleGuess)
		r.Post("/rounds/{id}/observe", s.handleObserve)
		r.Delete("/rounds/{id}", s.handleDelete)
	})

	// Evaluation + run history
	s.mountEval()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.sweep(ctx)
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutCtx)
	}()

	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) sweep(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(ctx, s.cfg.RoundTTL); n > 0 {
				log.Debug().Int("rounds", n).Msg("swept idle rounds")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ------------------------------ LEXICON ------------------------------------

type lexiconRes struct {
	Words   int    `json:"words"`
	Lengths []int  `json:"lengths"`
	Digest  string `json:"digest"`
}

func (s *Server) handleLexicon(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, lexiconRes{
		Words:   s.lex.Size(),
		Lengths: s.lex.Lengths(),
		Digest:  s.lex.Digest(),
	})
}

// ------------------------------- ROUNDS ------------------------------------

// startReq/Res payloads for POST /rounds.
type startReq struct {
	Length int    `json:"length"`
	Policy string `json:"policy"` // optional; server default when empty
}
type startRes struct {
	RoundID    string `json:"roundId"`
	Length     int    `json:"length"`
	Policy     string `json:"policy"`
	Candidates int    `json:"candidates"`
	Fallback   bool   `json:"fallback"`
}

// handleStart opens a round for a hidden word of the requested length.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	policy := s.cfg.Policy
	if req.Policy != "" {
		p, err := round.ParsePolicy(req.Policy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		policy = p
	}

	rd, err := round.Start(s.lex, req.Length, round.Options{Policy: policy, Strict: s.cfg.Strict})
	switch {
	case errors.Is(err, round.ErrNoCandidates):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, round.ErrInvalidLength):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.store.Create(r.Context(), rd)
	if err != nil {
		log.Error().Err(err).Msg("create round")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusCreated, startRes{
		RoundID:    sess.ID,
		Length:     rd.Length(),
		Policy:     string(rd.Policy()),
		Candidates: rd.CandidateCount(),
		Fallback:   rd.Fallback(),
	})
}

type guessRes struct {
	Letter string      `json:"letter"`
	State  round.State `json:"state"`
}

// handleGuess asks the round for its next letter.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var res guessRes
	err := sess.Do(func(rd *round.Round) error {
		c, err := rd.Guess()
		if err != nil {
			return err
		}
		res = guessRes{Letter: string(c), State: rd.State()}
		return nil
	})
	if err != nil {
		writeRoundError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// observeReq/Res payloads for POST /rounds/{id}/observe.
type observeReq struct {
	Pattern string `json:"pattern"` // "_" or " " for unknown positions
}
type observeRes struct {
	Pattern    string      `json:"pattern"`
	Candidates int         `json:"candidates"`
	Misses     int         `json:"misses"`
	State      round.State `json:"state"`
	Fallback   bool        `json:"fallback"`
}

// handleObserve feeds the revealed pattern back to the round.
func (s *Server) handleObserve(w http.ResponseWriter, r *http.Request) {
	var req observeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var res observeRes
	err := sess.Do(func(rd *round.Round) error {
		if err := rd.Observe(round.ParsePattern(req.Pattern)); err != nil {
			return err
		}
		res = observeRes{
			Pattern:    string(rd.Pattern()),
			Candidates: rd.CandidateCount(),
			Misses:     rd.Misses(),
			State:      rd.State(),
			Fallback:   rd.Fallback(),
		}
		return nil
	})
	if err != nil {
		writeRoundError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return sess, true
}

// writeRoundError maps round errors to status codes.
func writeRoundError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, round.ErrInvalidPattern):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, round.ErrRoundOver),
		errors.Is(err, round.ErrAwaitingObservation),
		errors.Is(err, round.ErrNoPendingGuess),
		errors.Is(err, round.ErrLettersExhausted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("round")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
