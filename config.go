package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/blankslate/games/blankslate"
)

type Config struct {
	bind            string
	maxDisplayScore int
	phrases         []string
	players         int
	port            int
	prefix          string
	profile         bool
	rateBurst       int
	rateLimit       float64
	roundTimeout    time.Duration
	rounds          int
	sessionTimeout  time.Duration
	tlsCert         string
	tlsKey          string
	verbose         bool
	version         bool
	winScore        int

	log zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.players < 2 {
		return fmt.Errorf("invalid player count (must be at least 2): %d", c.players)
	}
	if c.winScore < 1 {
		return fmt.Errorf("invalid win score (must be positive): %d", c.winScore)
	}
	if c.rounds < 1 {
		return fmt.Errorf("invalid round count (must be positive): %d", c.rounds)
	}
	if c.roundTimeout < 0 || c.sessionTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.rateLimit <= 0 || c.rateBurst < 1 {
		return fmt.Errorf("invalid rate limit: %v/s with burst %d", c.rateLimit, c.rateBurst)
	}
	if len(c.cleanPhrases()) == 0 {
		return errors.New("phrase list must not be empty")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) cleanPhrases() []string {
	out := make([]string, 0, len(c.phrases))
	for _, p := range c.phrases {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) settings() blankslate.Settings {
	return blankslate.Settings{
		PlayersPerRoom:  c.players,
		WinScore:        c.winScore,
		MaxDisplayScore: c.maxDisplayScore,
		RoundsPerGame:   c.rounds,
		RoundTimeout:    c.roundTimeout,
		Phrases:         c.cleanPhrases(),
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BLANKSLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "blankslate",
		Short:         "A real-time server for the Blank Slate party word game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.log = newLogger(cfg)
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: BLANKSLATE_BIND)")
	fs.IntVar(&cfg.maxDisplayScore, "max-display-score", blankslate.DefaultMaxDisplayScore, "highest score shown on client leaderboards (env: BLANKSLATE_MAX_DISPLAY_SCORE)")
	fs.StringSliceVar(&cfg.phrases, "phrases", blankslate.DefaultPhrases, "comma-separated phrase pool, _ marks the blank (env: BLANKSLATE_PHRASES)")
	fs.IntVar(&cfg.players, "players", blankslate.DefaultPlayersPerRoom, "players required to start a game (env: BLANKSLATE_PLAYERS)")
	fs.IntVarP(&cfg.port, "port", "p", 5000, "port to listen on (env: BLANKSLATE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: BLANKSLATE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: BLANKSLATE_PROFILE)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 10, "burst of inbound events allowed per connection (env: BLANKSLATE_RATE_BURST)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 5, "inbound events per second allowed per connection (env: BLANKSLATE_RATE_LIMIT)")
	fs.DurationVar(&cfg.roundTimeout, "round-timeout", 0, "time before an unfinished round is scored anyway, 0 waits forever (env: BLANKSLATE_ROUND_TIMEOUT)")
	fs.IntVar(&cfg.rounds, "rounds", blankslate.DefaultRoundsPerGame, "maximum phrases per game (env: BLANKSLATE_ROUNDS)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 0, "time before idle rooms are removed, 0 keeps them forever (env: BLANKSLATE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: BLANKSLATE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: BLANKSLATE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: BLANKSLATE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: BLANKSLATE_VERSION)")
	fs.IntVar(&cfg.winScore, "win-score", blankslate.DefaultWinScore, "score that ends the game (env: BLANKSLATE_WIN_SCORE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("blankslate v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
