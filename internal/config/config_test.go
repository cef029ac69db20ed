package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/scenic/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenic.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[scene]
fixed_step = "10ms"
gravity = [0.0, -1.62, 0.0]

[stress]
depth = 3
workers = 2

[logging]
level = "debug"
format = "json"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.Scene.FixedStep)
	assert.Equal(t, [3]float32{0, -1.62, 0}, cfg.Scene.Gravity)
	assert.Equal(t, 3, cfg.Stress.Depth)
	assert.Equal(t, 2, cfg.Stress.Workers)
	assert.Equal(t, "json", cfg.Logging.Format)

	def := config.Default()
	assert.Equal(t, def.Scene.MaxFixedSteps, cfg.Scene.MaxFixedSteps)
	assert.Equal(t, def.Stress.Breadth, cfg.Stress.Breadth)
	assert.Equal(t, def.View, cfg.View)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "[scene]\nfixed_stpe = \"1s\"\n"},
		{"bad duration", "[scene]\nfixed_step = \"soon\"\n"},
		{"zero step", "[scene]\nfixed_step = \"0s\"\n"},
		{"churn range", "[stress]\nchurn = 2.0\n"},
		{"view size", "[view]\nwidth = 0\n"},
		{"zoom", "[view]\nzoom = -1.0\n"},
		{"history limit", "[scene]\nhistory_limit = -1\n"},
		{"format", "[logging]\nformat = \"xml\"\n"},
		{"profile mode", "[profile]\nmode = \"gpu\"\n"},
		{"syntax", "[scene\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, config.Default().Write(&buf))
	assert.Contains(t, buf.String(), `fixed_step = "20ms"`)

	cfg, err := config.Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	empty, err := config.LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), empty)
}

func TestNewLogger(t *testing.T) {
	logger, err := config.NewLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = config.NewLogger(config.LoggingConfig{Level: "loud", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
