package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DRIFTGUARD_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8010, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.StopLoss.Enabled)
	assert.InDelta(t, 0.15, cfg.StopLoss.Threshold, 1e-9)
	assert.InDelta(t, 0.25, cfg.StopLoss.MaxDailyLoss, 1e-9)
	assert.Equal(t, 24*time.Hour, cfg.StopLoss.Cooldown)
	assert.Equal(t, "0 0 */4 * * *", cfg.RebalanceSchedule)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DRIFTGUARD_DATA_DIR", t.TempDir())
	t.Setenv("DRIFTGUARD_PORT", "9000")
	t.Setenv("STOP_LOSS_ENABLED", "false")
	t.Setenv("STOP_LOSS_THRESHOLD", "0.2")
	t.Setenv("STOP_LOSS_COOLDOWN_HOURS", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.StopLoss.Enabled)
	assert.InDelta(t, 0.2, cfg.StopLoss.Threshold, 1e-9)
	assert.Equal(t, 12*time.Hour, cfg.StopLoss.Cooldown)
}

func TestValidate(t *testing.T) {
	cfg := &Config{StopLoss: StopLossConfig{Threshold: 0.15, MaxDailyLoss: 0.25}}
	assert.NoError(t, cfg.Validate())

	cfg.StopLoss.Threshold = 0
	assert.Error(t, cfg.Validate())

	cfg.StopLoss.Threshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg.StopLoss.Threshold = 0.15
	cfg.StopLoss.MaxDailyLoss = 0
	assert.Error(t, cfg.Validate())
}
