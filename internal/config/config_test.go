package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8089", cfg.Server.Address)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 6, cfg.Combat.SandCapacity)
	assert.Equal(t, time.Second, cfg.Combat.SandInterval)
	assert.Equal(t, 3, cfg.Combat.PlayerStartingSand)
	assert.Equal(t, 2, cfg.Combat.EnemyStartingSand)
	assert.InDelta(t, 0.3, cfg.Combat.LowHealthThreshold, 1e-9)
	assert.InDelta(t, 1.5, cfg.Combat.DefensiveBonus, 1e-9)
	assert.InDelta(t, 1.2, cfg.Combat.AggressiveBonus, 1e-9)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  address: ":9000"
  tick_rate: 100ms
logging:
  level: debug
  format: json
combat:
  sand_capacity: 8
  player_starting_sand: 4
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, 100*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 8, cfg.Combat.SandCapacity)
	assert.Equal(t, 4, cfg.Combat.PlayerStartingSand)
	// Untouched keys keep defaults.
	assert.Equal(t, 2, cfg.Combat.EnemyStartingSand)
}

func TestLoad_EnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("DUAT_SERVER_ADDRESS", ":7777")
	t.Setenv("DUAT_COMBAT_SAND_CAPACITY", "8")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Server.Address)
	assert.Equal(t, 8, cfg.Combat.SandCapacity)
}

func TestLoad_RejectsInvalidTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
combat:
  sand_capacity: 2
  player_starting_sand: 5
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
