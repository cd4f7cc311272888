// internal/httpserver/routes_eval.go
//
// HTTP routes for batch evaluation and run history.
//   - POST /eval        → play a list of hidden words, persist and return the report
//   - GET  /runs        → leaderboard (best score first); ?digest= filters by dictionary
//   - GET  /runs/{id}   → one run with its per-word rows
//
// All three require a bearer token when a JWT secret is configured.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/eval"
	"github.com/robalobadob/hangman/internal/results"
	"github.com/robalobadob/hangman/internal/round"
)

// maxHidden bounds the size of a single /eval request.
const maxHidden = 20000

func (s *Server) mountEval() {
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Use(chimw.Timeout(2 * time.Minute))
		r.Post("/eval", s.handleEval)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
	})
}

type evalReq struct {
	Hidden []string `json:"hidden"`
	Policy string   `json:"policy"`
}

type evalRes struct {
	RunID string `json:"runId,omitempty"`
	eval.Report
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req evalReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if len(req.Hidden) > maxHidden {
		writeError(w, http.StatusRequestEntityTooLarge, "too_many_words")
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

	rep, err := eval.Run(r.Context(), s.lex, req.Hidden, eval.Options{
		Policy:  policy,
		Strict:  s.cfg.Strict,
		Workers: s.cfg.Workers,
	})
	if errors.Is(err, eval.ErrNoHiddenWords) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "eval_cancelled")
		return
	}

	res := evalRes{Report: rep}
	if s.runs != nil {
		run := results.FromReport(rep)
		if err := s.runs.Insert(r.Context(), &run); err != nil {
			// The report is still useful without history.
			log.Warn().Err(err).Msg("persist run")
		} else {
			res.RunID = run.ID
			log.Info().Str("run", run.ID).Str("user", subject(r)).Float64("score", run.Score).Msg("run stored")
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "history_disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	var (
		out []results.Run
		err error
	)
	if d := r.URL.Query().Get("digest"); d != "" {
		out, err = s.runs.ByDigest(r.Context(), d, limit)
	} else {
		out, err = s.runs.Leaderboard(r.Context(), limit)
	}
	if err != nil {
		log.Error().Err(err).Msg("list runs")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "history_disabled")
		return
	}
	run, err := s.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, results.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get run")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, run)
}
