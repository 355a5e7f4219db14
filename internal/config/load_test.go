package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets up environment variables for testing
func setupEnv(t *testing.T, envVars map[string]string) func() {
	// Save current environment values
	originalValues := make(map[string]string)
	for name := range envVars {
		originalValues[name] = os.Getenv(name)
	}

	// Set new environment variables
	for name, value := range envVars {
		if value == "" {
			require.NoError(t, os.Unsetenv(name))
			continue
		}
		err := os.Setenv(name, value)
		require.NoError(t, err, "Failed to set environment variable %s", name)
	}

	// Return cleanup function
	return func() {
		// Restore original environment
		for name, value := range originalValues {
			if value == "" {
				os.Unsetenv(name)
			} else {
				os.Setenv(name, value)
			}
		}
	}
}

// TestLoadDefaults verifies that Load fills every field from the
// in-code defaults when no environment variables are set.
func TestLoadDefaults(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"DISPATCH_SERVER_PORT":                 "",
		"DISPATCH_SERVER_LOG_LEVEL":            "",
		"DISPATCH_TASK_NAME":                   "",
		"DISPATCH_TASK_RETRY_DELAY_SECONDS":    "",
		"DISPATCH_TASK_DISTRIBUTED":            "",
		"DISPATCH_TASK_QUEUE_SIZE":             "",
		"DISPATCH_TASK_ACK_TIMEOUT_SECONDS":    "",
		"DISPATCH_TASK_SHUTDOWN_GRACE_SECONDS": "",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg, "Load() should return a non-nil config")
	assert.Equal(t, 8080, cfg.Server.Port, "Default server port should be 8080")
	assert.Equal(t, "info", cfg.Server.LogLevel, "Default log level should be 'info'")
	assert.Equal(t, "sd_lora_inference", cfg.Task.Name)
	assert.Equal(t, 5, cfg.Task.RetryDelaySeconds)
	assert.False(t, cfg.Task.Distributed)
	assert.Equal(t, 100, cfg.Task.QueueSize)
	assert.Equal(t, 5, cfg.Task.AckTimeoutSeconds)
	assert.Equal(t, 10, cfg.Task.ShutdownGraceSeconds)
}

// TestLoadFromEnv verifies that Load reads values from environment
// variables over the defaults.
func TestLoadFromEnv(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"DISPATCH_SERVER_PORT":              "9090",
		"DISPATCH_SERVER_LOG_LEVEL":         "debug",
		"DISPATCH_TASK_NAME":                "sd_lora_finetune",
		"DISPATCH_TASK_RETRY_DELAY_SECONDS": "30",
		"DISPATCH_TASK_DISTRIBUTED":         "true",
		"DISPATCH_TASK_QUEUE_SIZE":          "10",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with valid environment variables")
	require.NotNil(t, cfg, "Load() should return a non-nil config")
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "sd_lora_finetune", cfg.Task.Name)
	assert.Equal(t, 30, cfg.Task.RetryDelaySeconds)
	assert.True(t, cfg.Task.Distributed)
	assert.Equal(t, 10, cfg.Task.QueueSize)
}

// TestLoadValidation verifies that invalid values fail validation
// instead of being silently accepted.
func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "port out of range",
			envVars: map[string]string{"DISPATCH_SERVER_PORT": "70000"},
		},
		{
			name:    "unknown log level",
			envVars: map[string]string{"DISPATCH_SERVER_LOG_LEVEL": "verbose"},
		},
		{
			name:    "zero retry delay",
			envVars: map[string]string{"DISPATCH_TASK_RETRY_DELAY_SECONDS": "0"},
		},
		{
			name:    "negative queue size",
			envVars: map[string]string{"DISPATCH_TASK_QUEUE_SIZE": "-1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cleanup := setupEnv(t, tc.envVars)
			defer cleanup()

			cfg, err := Load()

			assert.Error(t, err, "Load() should reject invalid configuration")
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}
