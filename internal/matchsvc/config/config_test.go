package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MATCH_CALL_INTERVAL", "MATCH_PRIZE_MULTIPLIER", "MATCH_ACCOUNT_TIMEOUT", "LOG_LEVEL", "CORS_ORIGINS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.CallInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)

	ec, err := cfg.Engine()
	require.NoError(t, err)
	assert.Equal(t, "4", ec.PrizeMultiplier.String())
	assert.Equal(t, 5*time.Second, ec.AccountTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MATCH_CALL_INTERVAL", "500ms")
	t.Setenv("MATCH_PRIZE_MULTIPLIER", "2.5")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	ec, err := cfg.Engine()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, ec.CallInterval)
	assert.Equal(t, "2.5", ec.PrizeMultiplier.String())
}

func TestEngineRejectsBadMultiplier(t *testing.T) {
	_, err := Config{PrizeMultiplier: "zero"}.Engine()
	assert.Error(t, err)

	_, err = Config{PrizeMultiplier: "-1"}.Engine()
	assert.Error(t, err)
}

func TestLoadRejectsBadInterval(t *testing.T) {
	t.Setenv("MATCH_CALL_INTERVAL", "soon")
	_, err := Load()
	assert.Error(t, err)
}
