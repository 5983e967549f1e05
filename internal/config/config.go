// Package config loads confirmtweet settings from a config file,
// CONFIRMTWEET_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mikequentel/confirmtweet/internal/model"
)

const EnvPrefix = "CONFIRMTWEET"

const (
	KeyBaseURL    = "base_url"
	KeyPackageID  = "pkgid"
	KeyDisable    = "disable_edit"
	KeyTemplate   = "template"
	KeyTimeout    = "timeout"
	KeyHistoryDB  = "history_db"
	KeyLogLevel   = "log_level"
	KeyAccessible = "accessible"
)

var ErrMissingBaseURL = errors.New("base_url is required")

type Config struct {
	BaseURL    string
	Widget     model.WidgetConfig
	Template   string
	Timeout    time.Duration
	HistoryDB  string
	LogLevel   slog.Level
	Accessible bool
}

// New returns a viper instance with defaults and env binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyBaseURL, "http://localhost:5000")
	v.SetDefault(KeyTemplate, "edit_tweet.html")
	v.SetDefault(KeyTimeout, "20s")
	v.SetDefault(KeyHistoryDB, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyAccessible, false)
	return v
}

// BindFlags binds flags named like the keys, with '-' for '_'.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{KeyBaseURL, KeyPackageID, KeyDisable, KeyTemplate, KeyTimeout, KeyHistoryDB, KeyLogLevel, KeyAccessible} {
		f := fs.Lookup(strings.ReplaceAll(key, "_", "-"))
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the optional config file and validates every setting.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	base := strings.TrimSpace(v.GetString(KeyBaseURL))
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	if u, err := url.Parse(base); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base_url %q: must be an absolute http(s) URL", base)
	}

	// disable_edit is read as text so "True" from a CKAN ini, "1" from env and
	// a YAML boolean all go through the same strict parser.
	wc, err := model.NewWidgetConfig(v.GetString(KeyPackageID), v.GetString(KeyDisable))
	if err != nil {
		return nil, err
	}

	timeout, err := parseDuration(v.GetString(KeyTimeout))
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}

	tmpl := strings.TrimSpace(v.GetString(KeyTemplate))
	if tmpl == "" {
		tmpl = "edit_tweet.html"
	}

	return &Config{
		BaseURL:    base,
		Widget:     wc,
		Template:   tmpl,
		Timeout:    timeout,
		HistoryDB:  v.GetString(KeyHistoryDB),
		LogLevel:   level,
		Accessible: v.GetBool(KeyAccessible),
	}, nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
