package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, "simulated", cfg.Settlement.Mode)
	assert.Equal(t, 50, cfg.Settlement.ConfirmDelayMs)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.Client.StrictExact)
	assert.Equal(t, 0, cfg.Client.ConfirmTimeoutSeconds)
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default().Settlement.Mode, cfg.Settlement.Mode)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Client.RequesterID = 7
	cfg.Client.StrictExact = true
	cfg.Settlement.Mode = "live"
	cfg.Settlement.GatewayURL = "http://localhost:8545"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded.Client.RequesterID)
	assert.True(t, loaded.Client.StrictExact)
	assert.Equal(t, "live", loaded.Settlement.Mode)
	assert.Equal(t, "http://localhost:8545", loaded.Settlement.GatewayURL)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Settlement.Mode = "live"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "live", loaded.Settlement.Mode)
	// untouched sections keep their defaults
	assert.Equal(t, ":8080", loaded.Server.Addr)
}

func TestGetSet(t *testing.T) {
	original := Get()
	defer Set(original)

	cfg := Default()
	cfg.Client.RequesterID = 42
	Set(cfg)
	assert.Equal(t, int64(42), Get().Client.RequesterID)
}
