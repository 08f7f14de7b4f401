package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldric/regent/internal/realm"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "regent.db", cfg.DBPath)
	assert.Equal(t, "sovereign", cfg.Owner)
	assert.Equal(t, string(realm.DifficultyNormal), cfg.Difficulty)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.Seed)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regent.yaml")
	yaml := `
db_path: /tmp/game.db
owner: alice
seed: 42
log_level: debug
http:
  addr: ":9090"
  allow_origins:
    - https://game.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/game.db", cfg.DBPath)
	assert.Equal(t, "alice", cfg.Owner)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://game.example.com"}, cfg.HTTP.AllowOrigins)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REGENT_OWNER", "bob")
	t.Setenv("REGENT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Owner)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestBalanceDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	b, err := cfg.Balance()
	require.NoError(t, err)
	assert.Equal(t, 10000, b.MaxPopulation)
	assert.Equal(t, 100, b.UpgradeBaseCost)
}

func TestBalanceOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regent.yaml")
	yaml := `
balance:
  max_population: 20000
  upgrade_base_cost: 50
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	b, err := cfg.Balance()
	require.NoError(t, err)

	assert.Equal(t, 20000, b.MaxPopulation)
	assert.Equal(t, 50, b.UpgradeBaseCost)
	// Untouched keys keep their stock values.
	assert.Equal(t, 1000, b.WorkerLimit)
	assert.Len(t, b.Victories, 3)
}
