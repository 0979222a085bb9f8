// Package config loads email-drafter settings from a TOML file, the
// environment and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/hal9000y/email-drafter/internal/drafter"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIBase           = "DRAFTER_API_BASE"
	EnvTone              = "DRAFTER_TONE"
	EnvTheme             = "DRAFTER_THEME"
	EnvOAuthClientID     = "OAUTH_GOOGLE_CLIENT_ID"
	EnvOAuthClientSecret = "OAUTH_GOOGLE_CLIENT_SECRET"
)

// Theme names accepted in configuration.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config holds runtime settings.
type Config struct {
	APIBase string `toml:"api_base"`
	Tone    string `toml:"tone"`
	Theme   string `toml:"theme"`

	LogFile  string `toml:"log_file"`
	HTTPAddr string `toml:"http_addr"`

	// MCP enables the /mcp endpoint and runs without the terminal UI.
	MCP   bool `toml:"mcp"`
	Stdio bool `toml:"stdio"`

	OAuthTokenFile string `toml:"oauth_token_file"`
	OAuthURL       string `toml:"oauth_url"`

	OAuthClientID     string `toml:"-"`
	OAuthClientSecret string `toml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIBase:        "http://localhost:8000",
		Tone:           string(drafter.ToneFormal),
		Theme:          ThemeDark,
		HTTPAddr:       "localhost:0",
		OAuthTokenFile: "./data/email-drafter-token.json",
	}
}

// LoadFile overlays the TOML file at path on c.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("toml.DecodeFile failed: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	return nil
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
// Variables already set are kept.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("godotenv.Load failed: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables on c.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIBase); v != "" {
		c.APIBase = v
	}
	if v := os.Getenv(EnvTone); v != "" {
		c.Tone = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.Theme = v
	}

	c.OAuthClientID = os.Getenv(EnvOAuthClientID)
	c.OAuthClientSecret = os.Getenv(EnvOAuthClientSecret)
}

// RegisterFlags binds flags to c using the current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.APIBase, "api-base", c.APIBase, "Base URL of the drafting endpoint")
	fs.StringVar(&c.Tone, "tone", c.Tone, "Initial tone: formal, casual or friendly")
	fs.StringVar(&c.Theme, "theme", c.Theme, "Initial theme: light or dark")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to log file, logs are discarded in UI and stdio mode otherwise")
	fs.StringVar(&c.HTTPAddr, "http-addr", c.HTTPAddr, "HTTP SERVER listen addr")
	fs.BoolVar(&c.MCP, "mcp", c.MCP, "Serve MCP over HTTP at /mcp instead of starting the terminal UI")
	fs.BoolVar(&c.Stdio, "stdio", c.Stdio, "Serve MCP over stdio instead of starting the terminal UI")
	fs.StringVar(&c.OAuthTokenFile, "oauth-token-file", c.OAuthTokenFile, "Path to cache google oauth token, empty to avoid storing")
	fs.StringVar(&c.OAuthURL, "oauth-url", c.OAuthURL, "OAuth URL")
}

// GmailEnabled reports whether Google OAuth credentials are configured.
func (c Config) GmailEnabled() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != ""
}

// Headless reports whether the terminal UI is disabled.
func (c Config) Headless() bool {
	return c.MCP || c.Stdio
}

// Dark reports whether the configured theme is dark.
func (c Config) Dark() bool {
	return strings.EqualFold(c.Theme, ThemeDark)
}

// Validate checks field values.
func (c Config) Validate() error {
	var errs []error

	if c.APIBase == "" {
		errs = append(errs, errors.New("api base must be set"))
	}
	if _, err := drafter.ParseTone(c.Tone); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Theme) {
	case ThemeLight, ThemeDark:
	default:
		errs = append(errs, fmt.Errorf("unknown theme %q", c.Theme))
	}

	return errors.Join(errs...)
}

// Load resolves the configuration from args: the -config TOML file and the
// -env-file dotenv file are read first, then the environment and finally the
// remaining flags are applied.
func Load(args []string) (Config, error) {
	pre := flag.NewFlagSet("email-drafter", flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	configFile := pre.String("config", "", "Path to TOML config file")
	envFile := pre.String("env-file", "", "Path to env file")
	scratch := Default()
	scratch.RegisterFlags(pre)
	if err := pre.Parse(args); err != nil && !errors.Is(err, flag.ErrHelp) {
		return Config{}, fmt.Errorf("flag parse failed: %w", err)
	}

	cfg := Default()
	if err := cfg.LoadFile(*configFile); err != nil {
		return Config{}, err
	}
	if err := LoadEnvFile(*envFile); err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv()

	fs := flag.NewFlagSet("email-drafter", flag.ContinueOnError)
	fs.String("config", *configFile, "Path to TOML config file")
	fs.String("env-file", *envFile, "Path to env file")
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("flag parse failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
