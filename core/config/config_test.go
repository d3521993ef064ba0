package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ductcad/snapengine/core/snap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapengine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "lru", cfg.Cache.Backend)
	assert.Equal(t, "grid", cfg.Index.Kind)

	engineCfg, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, snap.DefaultConfig(), engineCfg)
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "lru", cfg.Cache.Backend)
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
engine:
  snap_threshold: 15
  magnetic_threshold: 30
  priority_weighting: false
  exclude_types: [grid, perpendicular]
  max_snap_points: 500
cache:
  backend: ristretto
  capacity: 1024
index:
  kind: flat
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ristretto", cfg.Cache.Backend)
	assert.Equal(t, 1024, cfg.Cache.Capacity)
	assert.Equal(t, "flat", cfg.Index.Kind)

	engineCfg, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, 15.0, engineCfg.SnapThreshold)
	assert.Equal(t, 30.0, engineCfg.MagneticThreshold)
	assert.False(t, engineCfg.PriorityWeighting)
	assert.Equal(t, 500, engineCfg.MaxSnapPoints)
	assert.ElementsMatch(t,
		[]snap.PointType{snap.TypeGrid, snap.TypePerpendicular},
		engineCfg.ExcludeTypes)

	assert.True(t, engineCfg.Enabled, "unset fields keep defaults")
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "engine: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEngineConfig_UnknownExcludeType(t *testing.T) {
	path := writeConfig(t, `
engine:
  exclude_types: [corner]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.EngineConfig()
	assert.Error(t, err)
}

func TestEngineConfig_InvalidCombination(t *testing.T) {
	path := writeConfig(t, `
engine:
  snap_threshold: 50
  magnetic_threshold: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.EngineConfig()
	assert.Error(t, err, "magnetic threshold below snap threshold")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
engine:
  snap_threshold: 15
`)
	t.Setenv("SNAPENGINE_SNAP_THRESHOLD", "7.5")
	t.Setenv("SNAPENGINE_DISABLED", "1")

	cfg, err := Load(path)
	require.NoError(t, err)

	engineCfg, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, 7.5, engineCfg.SnapThreshold)
	assert.False(t, engineCfg.Enabled)
}

func TestLoad_EnvConfigPathWins(t *testing.T) {
	envPath := writeConfig(t, `
engine:
  max_snap_points: 42
`)
	t.Setenv(EnvConfigPath, envPath)

	cfg, err := Load("ignored.yaml")
	require.NoError(t, err)

	engineCfg, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, 42, engineCfg.MaxSnapPoints)
}
