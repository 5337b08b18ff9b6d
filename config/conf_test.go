package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{name: "debug", input: "debug", want: zerolog.DebugLevel},
		{name: "upperWarn", input: "WARN", want: zerolog.WarnLevel},
		{name: "padded", input: "  error\t", want: zerolog.ErrorLevel},
		{name: "blank", input: "   ", want: zerolog.InfoLevel},
		{name: "invalid", input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitLoggerFallsBackToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	err := InitLogger("loud", &buf)
	assert.Error(t, err)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	full := filepath.Join(dir, "full.yaml")
	require.NoError(t, os.WriteFile(full, []byte(`
log_level: debug
output_dir: /tmp/out
json: true
kev:
  url: http://127.0.0.1/kev.json
  store: /tmp/kev
  ttl_hours: 6
age:
  authfile: /tmp/auth.json
  auth_prefixes:
    - registry.example.com/private
`), 0644))

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("output_dir: reports\n"), 0644))

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("kev: [unterminated\n"), 0644))

	t.Run("full", func(t *testing.T) {
		cfg, err := Load(full)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "/tmp/out", cfg.OutputDir)
		assert.True(t, cfg.JSON)
		assert.Equal(t, "http://127.0.0.1/kev.json", cfg.KEV.URL)
		assert.Equal(t, "/tmp/kev", cfg.KEV.Store)
		assert.Equal(t, 6*time.Hour, cfg.KEVTTL())
		assert.Equal(t, []string{"registry.example.com/private"}, cfg.Age.AuthPrefixes)
	})

	t.Run("partialKeepsDefaults", func(t *testing.T) {
		cfg, err := Load(partial)
		require.NoError(t, err)
		assert.Equal(t, "reports", cfg.OutputDir)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, DefaultKEVUrl, cfg.KEV.URL)
		assert.Equal(t, DefaultKEVTTL*time.Hour, cfg.KEVTTL())
		assert.Equal(t, []string{DefaultAuthPrefix}, cfg.Age.AuthPrefixes)
	})

	t.Run("explicitMissing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
		assert.NotNil(t, cfg)
	})

	t.Run("broken", func(t *testing.T) {
		cfg, err := Load(broken)
		assert.Error(t, err)
		assert.Equal(t, DefaultKEVUrl, cfg.KEV.URL)
	})
}
