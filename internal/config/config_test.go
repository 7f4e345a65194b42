package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/blend-actions/internal/amount"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 59010, cfg.Port)
	assert.Equal(t, amount.PolicyError, cfg.OverflowPolicy)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ACTIONS_PORT", "6000")
	t.Setenv("ACTIONS_DB_PATH", "/tmp/index.db")
	t.Setenv("ACTIONS_OVERFLOW_POLICY", "saturate")
	t.Setenv("ACTIONS_CONCURRENCY", "4")
	t.Setenv("ACTIONS_REQUEST_TIMEOUT", "1500")
	t.Setenv("ACTIONS_SERVER_URL", "http://indexer:8080")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "/tmp/index.db", cfg.DBPath)
	assert.Equal(t, amount.PolicySaturate, cfg.OverflowPolicy)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)

	cfg.SetBaseURL()
	assert.Equal(t, "http://indexer:8080", cfg.ServerURL)
}

func TestLoadFromEnvironmentRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("ACTIONS_OVERFLOW_POLICY", "truncate")

	cfg := NewConfig()
	assert.Error(t, cfg.LoadFromEnvironment())
}

func TestSetBaseURLFromPort(t *testing.T) {
	cfg := NewConfig()
	cfg.Port = 7000
	cfg.SetBaseURL()
	assert.Equal(t, "http://localhost:7000", cfg.ServerURL)
}

func TestResolvePaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := NewConfig()
	require.NoError(t, cfg.ResolvePaths())

	assert.Equal(t, filepath.Join(home, ".blend-actions"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, ".blend-actions", "index.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, "backups"), cfg.BackupDir)

	cfg = NewConfig()
	cfg.DBPath = ":memory:"
	require.NoError(t, cfg.ResolvePaths())
	assert.Equal(t, ":memory:", cfg.DBPath)
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	cfg.Port = 80
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.OverflowPolicy = "clip"
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.RequestTimeout = 0
	assert.Error(t, cfg.Validate())
}
