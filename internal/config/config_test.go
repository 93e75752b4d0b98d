package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies loading with no config file present.
func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, cfg.Review.Endpoint)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.Review.APIKeyEnv)
	assert.Equal(t, DefaultTimeout, cfg.Review.Timeout)
	assert.Equal(t, DefaultMaxRegionBytes, cfg.Review.MaxRegionBytes)
	assert.True(t, cfg.Review.GrabParent)
}

// TestLoad_File verifies reading an explicit config file.
func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reviewfang.yaml")
	content := "review:\n  model: gpt-4o\n  timeout: 5s\nsyntax:\n  block_types: [block]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Review.Model)
	assert.Equal(t, 5*time.Second, cfg.Review.Timeout)
	assert.Equal(t, map[string]bool{"block": true}, cfg.BlockTypeSet())
}

// TestRequireModel verifies the missing-model sentinel.
func TestRequireModel(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	require.ErrorIs(t, cfg.RequireModel(), ErrNoModel)

	cfg.Review.Model = "gpt-4o"
	assert.NoError(t, cfg.RequireModel())
}

// TestValidate verifies rejection of non-positive limits.
func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	assert.Error(t, cfg.Validate())

	cfg.Review.Timeout = time.Second
	cfg.Review.MaxRegionBytes = 1
	assert.NoError(t, cfg.Validate())
}

// TestBlockTypeSet_Defaults verifies fallback to the default categories.
func TestBlockTypeSet_Defaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	set := cfg.BlockTypeSet()

	for _, name := range DefaultBlockTypes {
		assert.True(t, set[name])
	}
}
