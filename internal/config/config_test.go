package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	fs.String("http-addr", ":8080", "")
	fs.Int("session-limit", 0, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "knoldeck.db", cfg.DB)
	assert.Equal(t, "repos", cfg.ReposDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 0, cfg.Session.Limit)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knoldeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: from-file.db
repos_dir: file-repos
log:
  level: debug
  format: json
http:
  addr: ":9000"
session:
  limit: 20
`), 0o644))

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load(newFlagSet(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, "from-file.db", cfg.DB)
		assert.Equal(t, "file-repos", cfg.ReposDir)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, ":9000", cfg.HTTP.Addr)
		assert.Equal(t, 20, cfg.Session.Limit)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("KNOLDECK_CONFIG", path)
		t.Setenv("KNOLDECK_DB", "from-env.db")
		t.Setenv("KNOLDECK_LOG_LEVEL", "warn")
		t.Setenv("KNOLDECK_SESSION_LIMIT", "5")
		t.Setenv("KNOLDECK_REPOS_DIR", "env-repos")

		cfg, err := Load(newFlagSet(t))
		require.NoError(t, err)
		assert.Equal(t, "from-env.db", cfg.DB)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, 5, cfg.Session.Limit)
		assert.Equal(t, "env-repos", cfg.ReposDir)
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("KNOLDECK_DB", "from-env.db")

		cfg, err := Load(newFlagSet(t, "--config", path, "--db", "from-flag.db", "--http-addr", ":7000", "--session-limit", "3"))
		require.NoError(t, err)
		assert.Equal(t, "from-flag.db", cfg.DB)
		assert.Equal(t, ":7000", cfg.HTTP.Addr)
		assert.Equal(t, 3, cfg.Session.Limit)
		assert.Equal(t, "debug", cfg.Log.Level, "unset flags keep lower layers")
	})
}

func TestLoadInvalid(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		_, err := Load(newFlagSet(t, "--log-level", "loud"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "level")
	})

	t.Run("negative session limit", func(t *testing.T) {
		_, err := Load(newFlagSet(t, "--session-limit", "-1"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(newFlagSet(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
		require.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "card_id", "c1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"card_id":"c1"`)
}
