package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"HAUSHALT_API_URL", "SESSION_DB", "DISPLAY_TZ", "HAUSHALT_HTTP_TIMEOUT"} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultSessionDB, cfg.SessionDB)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Zero(t, cfg.HTTPTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HAUSHALT_API_URL", "http://backend:9000")
	t.Setenv("SESSION_DB", "/tmp/s.db")
	t.Setenv("DISPLAY_TZ", "Europe/Berlin")
	t.Setenv("HAUSHALT_HTTP_TIMEOUT", "5s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.APIURL)
	assert.Equal(t, "/tmp/s.db", cfg.SessionDB)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"bad zone", "DISPLAY_TZ", "Mars/Olympus", "invalid DISPLAY_TZ"},
		{"bad timeout", "HAUSHALT_HTTP_TIMEOUT", "soon", "invalid HAUSHALT_HTTP_TIMEOUT"},
		{"negative timeout", "HAUSHALT_HTTP_TIMEOUT", "-1s", "invalid HAUSHALT_HTTP_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even empty
	os.Unsetenv("HAUSHALT_API_URL")
	t.Cleanup(func() { os.Unsetenv("HAUSHALT_API_URL") })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HAUSHALT_API_URL=http://from-file:8000\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:8000", cfg.APIURL)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
}
