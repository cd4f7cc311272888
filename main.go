package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hangman/internal/eval"
	"github.com/robalobadob/hangman/internal/httpserver"
	"github.com/robalobadob/hangman/internal/lexicon"
	"github.com/robalobadob/hangman/internal/results"
	"github.com/robalobadob/hangman/internal/round"
	"github.com/robalobadob/hangman/internal/store"
)

const (
	releaseVersion = "0.1.0"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default()
	}
	return lexicon.LoadFile(path)
}

func serve(ctx context.Context, cfg *Config) error {
	lx, err := loadLexicon(cfg.words)
	if err != nil {
		return fmt.Errorf("load words: %w", err)
	}
	policy, _ := round.ParsePolicy(cfg.policy)

	var runs *results.Store
	if cfg.serveDB != "" {
		db, err := results.Open(cfg.serveDB)
		if err != nil {
			return err
		}
		defer db.Close()
		runs = results.NewStore(db)
	}

	srv := httpserver.New(lx, store.NewMemoryStore(), runs, httpserver.Config{
		Policy:    policy,
		Strict:    cfg.strict,
		JWTSecret: cfg.jwtSecret,
		Workers:   cfg.workers,
		RoundTTL:  cfg.roundTTL,
	})
	if cfg.jwtSecret == "" {
		log.Warn().Msg("no jwt secret set; /eval and /runs are open")
	}

	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))
	log.Info().
		Str("addr", addr).
		Int("words", lx.Size()).
		Str("policy", string(policy)).
		Msg("starting hangman server")
	return srv.Start(ctx, addr)
}

func evaluate(ctx context.Context, w io.Writer, cfg *Config, hiddenPath string) error {
	lx, err := loadLexicon(cfg.words)
	if err != nil {
		return fmt.Errorf("load words: %w", err)
	}
	policy, _ := round.ParsePolicy(cfg.policy)

	raw, err := os.ReadFile(hiddenPath)
	if err != nil {
		return err
	}
	hidden := strings.Split(string(raw), "\n")
	total := 0
	for _, h := range hidden {
		if strings.TrimSpace(h) != "" {
			total++
		}
	}

	bar := progressbar.Default(int64(total))
	rep, err := eval.Run(ctx, lx, hidden, eval.Options{
		Policy:  policy,
		Strict:  cfg.strict,
		Workers: cfg.workers,
		OnWord:  func(eval.WordResult) { _ = bar.Add(1) },
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Accuracy: %.4f\n", rep.Accuracy)
	fmt.Fprintf(w, "Time per guess in seconds: %.4E\n", rep.SecPerGuess)
	fmt.Fprintf(w, "Used memory in bytes: %.4E\n", float64(rep.MemoryBytes))
	fmt.Fprintf(w, "Score: %.4f\n", rep.Score)

	if cfg.evalDB == "" {
		return nil
	}
	db, err := results.Open(cfg.evalDB)
	if err != nil {
		return err
	}
	defer db.Close()
	run := results.FromReport(rep)
	if err := results.NewStore(db).Insert(ctx, &run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	fmt.Fprintf(w, "Run: %s\n", run.ID)
	return nil
}

func mintToken(w io.Writer, cfg *Config) error {
	token, exp, err := httpserver.SignToken(cfg.tokenSecret, cfg.subject, cfg.tokenTTL)
	if err != nil {
		return err
	}
	log.Debug().Str("subject", cfg.subject).Time("expires", exp).Msg("token issued")
	fmt.Fprintln(w, token)
	return nil
}
