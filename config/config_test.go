package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "conviction.db", cfg.Storage.DSN)

	params := cfg.MarketParams()
	assert.Equal(t, 7*24*time.Hour, params.LockPeriod)
	assert.Equal(t, uint64(1000), params.EarlyWithdrawPenaltyBps)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeYAML(t, `
market:
  lock_period_hours: 48
  early_withdraw_penalty_bps: 0
storage:
  dsn: ":memory:"
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)

	params := cfg.MarketParams()
	assert.Equal(t, 48*time.Hour, params.LockPeriod)
	// 0 explícito deshabilita el early withdraw, no se pisa con el default
	assert.Zero(t, params.EarlyWithdrawPenaltyBps)
}

func TestLoad_InvalidParamsRejected(t *testing.T) {
	path := writeYAML(t, `
market:
  min_stake: 500
  max_stake: 100
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}
