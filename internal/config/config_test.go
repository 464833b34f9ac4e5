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
	t.Setenv("API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2000*time.Millisecond, cfg.Cadence)
	assert.Equal(t, 100.0, cfg.RadiusMeters)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SamplerStatic, cfg.Sampler)
	assert.Equal(t, "granted", cfg.StaticPermission)
	assert.False(t, cfg.UsePostgres())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("CADENCE_MS", "500")
	t.Setenv("RADIUS_METERS", "250.5")
	t.Setenv("SAMPLER", "Replay")
	t.Setenv("REPLAY_PATH", "tracks/walk.yaml")
	t.Setenv("DATABASE_URL", "postgres://localhost/nearby")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Cadence)
	assert.Equal(t, 250.5, cfg.RadiusMeters)
	assert.Equal(t, SamplerReplay, cfg.Sampler)
	assert.True(t, cfg.UsePostgres())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api key", map[string]string{"API_KEY": ""}},
		{"non numeric cadence", map[string]string{"CADENCE_MS": "fast"}},
		{"zero cadence", map[string]string{"CADENCE_MS": "0"}},
		{"negative radius", map[string]string{"RADIUS_METERS": "-1"}},
		{"unknown sampler", map[string]string{"SAMPLER": "gps"}},
		{"replay without path", map[string]string{"SAMPLER": "replay"}},
		{"bad permission", map[string]string{"STATIC_PERMISSION": "maybe"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("API_KEY", "secret")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NEARBY_TEST_KEY=from-file\n"), 0o600))
	t.Setenv("NEARBY_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("NEARBY_TEST_KEY"))

	LoadDotEnv(path)
	assert.Equal(t, "from-file", Get("NEARBY_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", Get("NEARBY_MISSING_KEY", "fallback"))
}
