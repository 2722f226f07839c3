package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AQAAR_STATE_DIR", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 20*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Local", cfg.StateDriver)
	assert.Equal(t, "aqaar-owner-actions", cfg.KafkaTopic)
	assert.NotEmpty(t, cfg.StateDir)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("AQAAR_API_URL=http://localhost:3000/api\nAQAAR_LOG_LEVEL=debug\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("AQAAR_API_URL")
		os.Unsetenv("AQAAR_LOG_LEVEL")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
