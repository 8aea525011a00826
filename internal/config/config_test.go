package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 30, cfg.HTTPTimeoutSeconds)
}

func TestLoadCustomValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("API_BASE_URL", "https://backend.example.com/")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "https://backend.example.com", cfg.APIBaseURL)
	assert.Equal(t, 15, cfg.HTTPTimeoutSeconds)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "fieldsales.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_base_url: https://yaml.example.com\ncache_max_items: 200\nlog_level: debug\n"), 0600))
	t.Setenv("FIELDSALES_CONFIG", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://yaml.example.com", cfg.APIBaseURL)
	assert.Equal(t, 200, cfg.CacheMaxItems)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PHOTO_LOCAL_PATH=/tmp/dotenv-photos\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("PHOTO_LOCAL_PATH") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/dotenv-photos", cfg.PhotoPath)
}

func TestLoadInvalidTimeoutFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.HTTPTimeoutSeconds)
}

func TestLoadMissingYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FIELDSALES_CONFIG", "/nonexistent/fieldsales.yaml")

	_, err := Load()
	assert.Error(t, err)
}
