package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	fuzzyThreshold int
	matchMode      string
	mediaDir       string
	port           int
	prefix         string
	profile        bool
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if _, ok := parseMatchMode(c.matchMode); !ok {
		return fmt.Errorf("invalid match mode (must be strict, loose, or fuzzy): %q", c.matchMode)
	}
	if c.fuzzyThreshold < minFuzzyThreshold || c.fuzzyThreshold > maxFuzzyThreshold {
		return fmt.Errorf("invalid fuzzy threshold (must be between %d-%d inclusive): %d",
			minFuzzyThreshold, maxFuzzyThreshold, c.fuzzyThreshold)
	}
	if c.mediaDir != "" {
		info, err := os.Stat(c.mediaDir)
		if err != nil {
			return fmt.Errorf("invalid media directory %q: %w", c.mediaDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("invalid media directory (not a directory): %q", c.mediaDir)
		}
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LYRICBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "lyricbox",
		Short:         "A live karaoke challenge game, with a control console and a stage display synced over websockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: LYRICBOX_BIND)")
	fs.IntVar(&cfg.fuzzyThreshold, "fuzzy-threshold", 2, "default edit distance allowed in fuzzy match mode (env: LYRICBOX_FUZZY_THRESHOLD)")
	fs.StringVar(&cfg.matchMode, "match-mode", "loose", "default lyric match mode, one of strict|loose|fuzzy (env: LYRICBOX_MATCH_MODE)")
	fs.StringVarP(&cfg.mediaDir, "media", "m", "", "directory containing audio/ and lrc/ song subdirectories (env: LYRICBOX_MEDIA)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: LYRICBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: LYRICBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: LYRICBOX_PROFILE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: LYRICBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: LYRICBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: LYRICBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: LYRICBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("lyricbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
