package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/brand-intel/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9090,
		"max_retries": 5,
		"allowed_sources": ["news", "website"],
		"endpoints": {"news": "https://news.example.com/v1?q=%s&area=%s"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, []string{"news", "website"}, cfg.AllowedSources)
	assert.Contains(t, cfg.Endpoints, "news")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"port": `)
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.AllowedSources = []string{"telegraph"}
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Endpoints = map[string]string{"telegraph": "http://x/%s/%s"}
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxRetries = -1
	assert.Error(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9090}
	merged := cfg.MergeWithDefaults(DefaultConfig())

	assert.Equal(t, 9090, merged.Port)
	assert.Equal(t, 3, merged.MaxRetries)
	assert.Equal(t, 30, merged.TimeoutSeconds)
	assert.Equal(t, 4, merged.Concurrency)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("SEARCH_API_KEY", "env-key")

	cfg := Config{DatabaseURL: "postgres://file"}
	cfg.FromEnv()

	assert.Equal(t, "postgres://file", cfg.DatabaseURL, "file value wins over env")
	assert.Equal(t, "env-key", cfg.SearchAPIKey)
}

func TestTypedAccessors(t *testing.T) {
	cfg := Config{
		AllowedSources: []string{"news"},
		Endpoints:      map[string]string{"website": "https://%s.example.com/?area=%s"},
		TimeoutSeconds: 10,
		BackoffMillis:  250,
	}

	require.Len(t, cfg.AllowedDataSources(), 1)
	assert.Equal(t, types.SourceNews, cfg.AllowedDataSources()[0])
	assert.Contains(t, cfg.EndpointMap(), types.SourceWebsite)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 250*time.Millisecond, cfg.Backoff())
}
