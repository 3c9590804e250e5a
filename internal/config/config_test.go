package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points all config paths at a temp directory and neutralizes token
// variables that may be set in the developer's environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv("SPARROW_OPENAI_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.APIToken)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 42, cfg.Seed)
	assert.Zero(t, cfg.Temperature)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, 20_000, cfg.MaxReviewTokens)
	assert.Contains(t, cfg.ExcludedExtensions, ".lock")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SPARROW_MODEL", "gpt-4o-mini")
	t.Setenv("SPARROW_CONCURRENCY", "4")
	t.Setenv("SPARROW_OPENAI_TOKEN", "sk-from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "sk-from-env", cfg.APIToken)
}

func TestLoad_ConventionalTokenVariable(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-conventional")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-conventional", cfg.APIToken)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"negative retries", "SPARROW_MAX_RETRIES", "-1"},
		{"negative concurrency", "SPARROW_CONCURRENCY", "-2"},
		{"zero timeout", "SPARROW_REQUEST_TIMEOUT_SECONDS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.env, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.APIToken = "sk-persisted"
	cfg.Model = "gpt-4-turbo"
	cfg.Seed = 7
	require.NoError(t, cfg.Save())

	// The file sits under the app's data root with owner-only permissions.
	path := filepath.Join(dir, "sparrow", "config.yaml")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-persisted", loaded.APIToken)
	assert.Equal(t, "gpt-4-turbo", loaded.Model)
	assert.Equal(t, 7, loaded.Seed)
}

func TestDataRoot_HonorsXDGCacheHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	assert.Equal(t, filepath.Join("/tmp/custom-cache", "sparrow"), DataRoot())
}

func TestFilePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	assert.Equal(t, filepath.Join("/tmp/custom-cache", "sparrow", "config.yaml"), FilePath())
}
