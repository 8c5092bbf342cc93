// Package config loads knoldeck settings from defaults, an optional YAML
// file, KNOLDECK_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/knoldeck/internal/validate"
)

const envPrefix = "KNOLDECK_"

// Config holds the application settings.
type Config struct {
	DB       string        `koanf:"db" validate:"required"`
	ReposDir string        `koanf:"repos_dir" validate:"required"`
	Log      LogConfig     `koanf:"log"`
	HTTP     HTTPConfig    `koanf:"http"`
	Session  SessionConfig `koanf:"session"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

type HTTPConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

type SessionConfig struct {
	// Limit caps the number of cards per study session; 0 means no limit.
	Limit int `koanf:"limit" validate:"min=0"`
}

func defaults() map[string]any {
	return map[string]any{
		"db":            "knoldeck.db",
		"repos_dir":     "repos",
		"log.level":     "info",
		"log.format":    "text",
		"http.addr":     ":8080",
		"session.limit": 0,
	}
}

// RegisterFlags adds the flags Load understands to fs. Flag names use the
// koanf key with "." replaced by "-", e.g. --log-level.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file (env "+envPrefix+"CONFIG)")
	fs.String("db", "knoldeck.db", "path to the SQLite database file")
	fs.String("repos-dir", "repos", "directory git card sources are checked out into")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")
}

// Load builds the configuration. fs may be nil; only flags the user actually
// set override lower layers.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := os.Getenv(envPrefix + "CONFIG")
	if fs != nil {
		if p, err := fs.GetString("config"); err == nil && p != "" {
			path = p
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// KNOLDECK_LOG_LEVEL -> log.level, KNOLDECK_REPOS_DIR -> repos_dir
	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		if key == "config" {
			return "", nil
		}
		for _, section := range []string{"log_", "http_", "session_"} {
			if strings.HasPrefix(key, section) {
				return strings.Replace(key, "_", ".", 1), value
			}
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if fs != nil {
		err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			if f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", ".")
			if f.Name == "repos-dir" {
				key = "repos_dir"
			}
			return key, posflag.FlagVal(fs, f)
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds the slog logger described by the log settings.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.level()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c LogConfig) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
