package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/vagent/internal/config"
)

func TestDefaultsValidate(t *testing.T) {
	d := config.Defaults()
	require.NoError(t, d.Validate())
}

func TestLoadAppliesOverrides(t *testing.T) {
	cfg, err := config.Load("", config.Overrides{LogLevel: "debug", Device: "/dev/foo"}, nil)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "/dev/foo", cfg.DevicePath)
}

func TestLoadRejectsChunkLargerThanFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_chunk_size: 2048\nmax_frame_bytes: 1024\n"), 0o600))

	_, err := config.Load(path, config.Overrides{}, nil)
	require.Error(t, err)
}

func TestMemoryBoundIsPositive(t *testing.T) {
	d := config.Defaults()
	require.Greater(t, d.MemoryBound(), uint64(0))
}

func TestValidateRejectsBadLevel(t *testing.T) {
	d := config.Defaults()
	d.LogLevel = "bogus"
	require.Error(t, d.Validate())
}

func TestValidateRejectsBackoffOrdering(t *testing.T) {
	d := config.Defaults()
	d.ReconnectBackoffMax = d.ReconnectBackoffInitial - 1
	require.Error(t, d.Validate())
}
