package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/robalobadob/hangman/internal/round"
)

type Config struct {
	// shared
	words    string
	policy   string
	strict   bool
	workers  int
	logLevel string

	// serve
	bind      string
	port      int
	serveDB   string
	jwtSecret string
	roundTTL  time.Duration

	// eval
	evalDB string

	// token
	tokenSecret string
	subject     string
	tokenTTL    time.Duration
}

func (c *Config) validate() error {
	if _, err := round.ParsePolicy(c.policy); err != nil {
		return err
	}
	if c.workers < 0 {
		return fmt.Errorf("invalid worker count (must be >= 0): %d", c.workers)
	}
	return nil
}

func (c *Config) validateServe() error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.roundTTL <= 0 {
		return errors.New("--round-ttl must be positive")
	}
	return nil
}

// bindEnv lets HANGMAN_<FLAG> override a flag's default; explicit flags still win.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("HANGMAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "hangman",
		Short:         "A hangman guessing engine with an HTTP driver and an evaluation harness.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cfg.logLevel)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVarP(&cfg.words, "words", "w", "", "dictionary file, one word per line; empty uses the built-in list (env: HANGMAN_WORDS)")
	pfs.StringVar(&cfg.policy, "policy", string(round.PolicyFrequency), "guess policy: frequency or entropy (env: HANGMAN_POLICY)")
	pfs.BoolVar(&cfg.strict, "strict", false, "fail rounds whose length has no dictionary words (env: HANGMAN_STRICT)")
	pfs.IntVar(&cfg.workers, "workers", 0, "evaluation workers; 0 uses GOMAXPROCS (env: HANGMAN_WORKERS)")
	pfs.StringVar(&cfg.logLevel, "log-level", "info", "trace, debug, info, warn or error (env: HANGMAN_LOG_LEVEL)")
	bindEnv(v, pfs)

	cmd.AddCommand(newServeCmd(cfg, v), newEvalCmd(cfg, v), newTokenCmd(cfg, v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("hangman v{{.Version}}\n")

	return cmd
}

func newServeCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the round and evaluation API over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateServe(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: HANGMAN_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: HANGMAN_PORT)")
	fs.StringVar(&cfg.serveDB, "db", "./data/runs.db", "SQLite file for run history; empty disables it (env: HANGMAN_DB)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "HS256 secret guarding /eval and /runs; empty disables auth (env: HANGMAN_JWT_SECRET)")
	fs.DurationVar(&cfg.roundTTL, "round-ttl", 30*time.Minute, "time before idle rounds are dropped (env: HANGMAN_ROUND_TTL)")
	bindEnv(v, fs)

	return cmd
}

func newEvalCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <hidden-words-file>",
		Short: "Play every word in a file and print accuracy, time, memory and score.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return evaluate(cmd.Context(), cmd.OutOrStdout(), cfg, args[0])
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.evalDB, "db", "", "SQLite file to record the run in; empty skips it (env: HANGMAN_DB)")
	bindEnv(v, fs)

	return cmd
}

func newTokenCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the evaluation endpoints.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mintToken(cmd.OutOrStdout(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.tokenSecret, "jwt-secret", "", "HS256 secret the server was started with (env: HANGMAN_JWT_SECRET)")
	fs.StringVar(&cfg.subject, "subject", "", "token subject, e.g. a user or team name")
	fs.DurationVar(&cfg.tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	bindEnv(v, fs)

	return cmd
}
