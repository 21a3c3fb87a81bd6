package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd_FlagDefaults(t *testing.T) {
	flags := runCmd.Flags()

	engineConfig, err := flags.GetString("engine-config")
	require.NoError(t, err)
	assert.Equal(t, "engine.yaml", engineConfig)

	horizon, err := flags.GetInt64("horizon")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), horizon)

	deadlock, err := flags.GetInt64("deadlock-threshold")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deadlock, "0 means defer to the engine config's garnet_deadlock_threshold")

	logLevel, err := flags.GetString("log")
	require.NoError(t, err)
	assert.Equal(t, "info", logLevel)
}

func TestRunCmd_RegisteredUnderRoot(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "run" {
			found = true
		}
	}
	assert.True(t, found, "the run subcommand must be registered on rootCmd")
}
