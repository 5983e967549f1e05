package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikequentel/confirmtweet/internal/config"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "confirmtweet",
	Short: "Approve, edit or suppress the drafted tweet for a CKAN dataset",
	Long: `confirmtweet - the CKAN "confirm tweet" dialog in the terminal.

It fetches the edit_tweet.html snippet for a dataset, shows the drafted tweet
in a modal, and posts it (or the "don't ask again" request) back to CKAN.`,
	SilenceUsage: true,
}

func main() {
	log.SetFlags(0)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", envOr("CONFIRMTWEET_CONFIG", ""), "config file (yaml, toml or json)")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("history-db", "", "sqlite file journaling flash messages")
}

// loadConfig binds cmd's flags and loads the validated config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(os.Stderr, cfg.LogLevel))
	return cfg, nil
}

// historyDB resolves the journal path for commands that need no dataset.
func historyDB(cmd *cobra.Command) (string, error) {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return "", err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config: %w", err)
		}
	}
	p := v.GetString(config.KeyHistoryDB)
	if p == "" {
		return "", errors.New("no history database: set --history-db or history_db")
	}
	return p, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// envOr returns the trimmed value of key, or def when it is unset or blank.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// ensureFile checks that path is a regular file we can read.
func ensureFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	if _, err := f.Read(make([]byte, 1)); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
