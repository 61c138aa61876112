package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enforcer/internal/config"
)

func resetFlags(t *testing.T) {
	t.Helper()
	logLevel = ""
	port = 0
	dryRun = false
	t.Cleanup(func() {
		logLevel = ""
		port = 0
		dryRun = false
	})
}

func baseConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "0.0.0.0", Port: 8766},
		Logging:  config.LoggingConfig{Level: "info"},
		Dispatch: config.DispatchConfig{Workers: 4, QueueSize: 64},
		Policies: []config.PolicyConfig{
			{Name: "kill-shells", PriorityMin: "critical", Action: "kill"},
		},
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	resetFlags(t)
	logLevel = "debug"
	port = 9999
	dryRun = true

	cfg := baseConfig()
	require.NoError(t, applyFlagOverrides(cfg))

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.True(t, cfg.DryRun)
}

func TestApplyFlagOverridesZeroValuesKeepConfig(t *testing.T) {
	resetFlags(t)

	cfg := baseConfig()
	require.NoError(t, applyFlagOverrides(cfg))

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 8766, cfg.Server.Port)
	assert.False(t, cfg.DryRun)
}

func TestApplyFlagOverridesRevalidates(t *testing.T) {
	resetFlags(t)
	port = 70000

	assert.Error(t, applyFlagOverrides(baseConfig()), "an out-of-range port override must not pass")
}

func TestConfigSummary(t *testing.T) {
	cfg := baseConfig()
	cfg.DryRun = true
	cfg.ExcludedContainers = []string{"ghost-mole"}

	out := configSummary(cfg)
	assert.Contains(t, out, "listen: 0.0.0.0:8766")
	assert.Contains(t, out, "dry_run: true")
	assert.Contains(t, out, "policies: 1")
	assert.Contains(t, out, "kill-shells")
	assert.Contains(t, out, "excluded containers: 1")
}
