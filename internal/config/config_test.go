package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SOLIDGROUPS_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Empty(t, cfg.Source.TypeIndex)
	require.Equal(t, 30, cfg.Source.TimeoutSeconds)
	require.NotEmpty(t, cfg.Cache.Path)
	require.NotEmpty(t, cfg.UI.AvatarIcon)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SOLIDGROUPS_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("SOLIDGROUPS_SOURCE_TYPE_INDEX", "https://me.example/settings/typeindex.ttl")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://me.example/settings/typeindex.ttl", cfg.Source.TypeIndex)
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("SOLIDGROUPS_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Source.TypeIndex = "https://me.example/settings/typeindex.ttl"
	cfg.Source.TimeoutSeconds = 10
	require.NoError(t, Save(cfg))

	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg.Source.TypeIndex, loaded.Source.TypeIndex)
	require.Equal(t, 10, loaded.Source.TimeoutSeconds)
}
