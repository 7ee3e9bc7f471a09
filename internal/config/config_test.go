package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("SANDBOX_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.InDelta(t, 1.0/60.0, cfg.Game.TimeStep, 1e-12)
	assert.False(t, cfg.Physics.StrictCollision, "по умолчанию исходное поведение")
}

func TestLoad_OverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sandbox.yaml")
	data := `
world:
  seed: 42
  height_mode: perlin
physics:
  strict_collision: true
storage:
  backend: sqlite
  path: /tmp/world.db
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	t.Setenv("SANDBOX_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, "perlin", cfg.World.HeightMode)
	assert.True(t, cfg.Physics.StrictCollision)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, PlayerBackendMemory, cfg.Storage.PlayerBackend, "незаданные поля берутся из дефолтов")
	assert.Equal(t, 1, cfg.World.LoadRadius)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: floppy\n"), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAPIPortFallback(t *testing.T) {
	api := APIConfig{Addr: "127.0.0.1"}

	t.Setenv("SANDBOX_API_PORT", "")
	assert.Equal(t, 8088, api.GetAPIPort())

	t.Setenv("SANDBOX_API_PORT", "9001")
	assert.Equal(t, 9001, api.GetAPIPort())
	assert.Equal(t, "127.0.0.1:9001", api.ListenAddr())

	api.Port = 7000
	assert.Equal(t, 7000, api.GetAPIPort(), "порт из конфига важнее окружения")
}
