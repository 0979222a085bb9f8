package config_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/email-drafter/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		config.EnvAPIBase,
		config.EnvTone,
		config.EnvTheme,
		config.EnvOAuthClientID,
		config.EnvOAuthClientSecret,
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.True(t, cfg.Dark())
	assert.False(t, cfg.GmailEnabled())
	assert.False(t, cfg.Headless())
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)

	tomlPath := writeFile(t, "drafter.toml", `
api_base = "http://file:9000"
tone = "casual"
theme = "light"
log_file = "/tmp/drafter.log"
`)

	cases := []struct {
		name     string
		env      map[string]string
		args     []string
		expected func(*config.Config)
	}{
		{
			name: "file",
			args: []string{"-config", tomlPath},
			expected: func(c *config.Config) {
				c.APIBase = "http://file:9000"
				c.Tone = "casual"
				c.Theme = "light"
				c.LogFile = "/tmp/drafter.log"
			},
		},
		{
			name: "env over file",
			env:  map[string]string{config.EnvAPIBase: "http://env:1", config.EnvTone: "friendly"},
			args: []string{"-config", tomlPath},
			expected: func(c *config.Config) {
				c.APIBase = "http://env:1"
				c.Tone = "friendly"
				c.Theme = "light"
				c.LogFile = "/tmp/drafter.log"
			},
		},
		{
			name: "flags over env",
			env:  map[string]string{config.EnvAPIBase: "http://env:1", config.EnvTheme: "light"},
			args: []string{"-config", tomlPath, "-api-base", "http://flag:2", "-theme", "dark", "-stdio"},
			expected: func(c *config.Config) {
				c.APIBase = "http://flag:2"
				c.Tone = "casual"
				c.Theme = "dark"
				c.LogFile = "/tmp/drafter.log"
				c.Stdio = true
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load(tc.args)
			require.NoError(t, err)

			expected := config.Default()
			tc.expected(&expected)
			assert.Equal(t, expected, cfg)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv(config.EnvOAuthClientID))
	require.NoError(t, os.Unsetenv(config.EnvOAuthClientSecret))

	envPath := writeFile(t, ".env", "OAUTH_GOOGLE_CLIENT_ID=client\nOAUTH_GOOGLE_CLIENT_SECRET=secret\n")

	cfg, err := config.Load([]string{"-env-file", envPath})
	require.NoError(t, err)

	assert.Equal(t, "client", cfg.OAuthClientID)
	assert.Equal(t, "secret", cfg.OAuthClientSecret)
	assert.True(t, cfg.GmailEnabled())
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	cases := []struct {
		name string
		args []string
	}{
		{name: "unknown tone", args: []string{"-tone", "angry"}},
		{name: "unknown theme", args: []string{"-theme", "sepia"}},
		{name: "empty api base", args: []string{"-api-base", ""}},
		{name: "missing config file", args: []string{"-config", filepath.Join(t.TempDir(), "none.toml")}},
		{name: "unknown toml key", args: []string{"-config", writeFile(t, "bad.toml", `colour = "blue"`)}},
		{name: "missing env file", args: []string{"-env-file", filepath.Join(t.TempDir(), "none.env")}},
		{name: "unknown flag", args: []string{"-nope"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(tc.args)
			require.Error(t, err)
		})
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := config.Load([]string{"-h"})
	require.ErrorIs(t, err, flag.ErrHelp)
}
