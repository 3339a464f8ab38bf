// Package config loads the dispatcher configuration from a YAML file.
//
// Every field has a default, so running without a file is valid. Command
// line flags are applied on top of the loaded values by the entry points.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport selects how the dispatcher talks to its caller.
type Transport string

const (
	// TransportStdio speaks MCP over stdin/stdout (default)
	TransportStdio Transport = "stdio"
	// TransportHTTP serves the streamable HTTP transport
	TransportHTTP Transport = "http"
)

// BrowserType names a Playwright browser engine.
type BrowserType string

const (
	BrowserChromium BrowserType = "chromium"
	BrowserFirefox  BrowserType = "firefox"
	BrowserWebKit   BrowserType = "webkit"
)

// Config is the root of the YAML document.
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server"`
	Browser    BrowserConfig    `yaml:"browser" json:"browser"`
	Navigation NavigationConfig `yaml:"navigation" json:"navigation"`
	GitHub     GitHubConfig     `yaml:"github" json:"github"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// ServerConfig controls the MCP endpoint.
type ServerConfig struct {
	Name      string    `yaml:"name" json:"name"`
	Transport Transport `yaml:"transport" json:"transport"`
	Address   string    `yaml:"address" json:"address"` // only used by the http transport
}

// BrowserConfig controls the shared Playwright session.
type BrowserConfig struct {
	Type           BrowserType   `yaml:"type" json:"type"`
	Headless       bool          `yaml:"headless" json:"headless"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`           // default per-operation timeout
	IdleTimeout    time.Duration `yaml:"idle_timeout" json:"idle_timeout"` // 0 disables idle reaping
	OutputDir      string        `yaml:"output_dir" json:"output_dir"`     // screenshots, PDFs, saved HTML
	SkipInstall    bool          `yaml:"skip_install" json:"skip_install"` // assume driver and browsers are present

	// AllowedOutputDirs lists extra directories file_path arguments may point into
	AllowedOutputDirs []string `yaml:"allowed_output_dirs" json:"allowed_output_dirs"`
}

// NavigationConfig restricts which URLs the browser may be sent to.
type NavigationConfig struct {
	AllowedPatterns []string `yaml:"allowed_patterns" json:"allowed_patterns"`
	DeniedPatterns  []string `yaml:"denied_patterns" json:"denied_patterns"`
}

// GitHubConfig controls the GitHub flows.
type GitHubConfig struct {
	BaseURL      string        `yaml:"base_url" json:"base_url"`
	UsernameEnv  string        `yaml:"username_env" json:"username_env"`
	PasswordEnv  string        `yaml:"password_env" json:"password_env"`
	LoginTimeout time.Duration `yaml:"login_timeout" json:"login_timeout"`
}

// LoggingConfig controls the file logger.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	Directory string `yaml:"directory" json:"directory"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "playwright-mcp",
			Transport: TransportStdio,
			Address:   "127.0.0.1:8931",
		},
		Browser: BrowserConfig{
			Type:           BrowserChromium,
			Headless:       false,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			Timeout:        30 * time.Second,
			IdleTimeout:    0,
			OutputDir:      os.TempDir(),
		},
		GitHub: GitHubConfig{
			BaseURL:      "https://github.com",
			UsernameEnv:  "GITHUB_USERNAME",
			PasswordEnv:  "GITHUB_PASSWORD",
			LoginTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.Server.Address == "" {
			return fmt.Errorf("server.address is required for the http transport")
		}
	default:
		return fmt.Errorf("invalid server.transport: %s (must be 'stdio' or 'http')", c.Server.Transport)
	}

	switch c.Browser.Type {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		return fmt.Errorf("invalid browser.type: %s (must be 'chromium', 'firefox' or 'webkit')", c.Browser.Type)
	}

	if c.Browser.ViewportWidth < 100 || c.Browser.ViewportWidth > 5000 {
		return fmt.Errorf("browser.viewport_width must be between 100 and 5000 pixels")
	}
	if c.Browser.ViewportHeight < 100 || c.Browser.ViewportHeight > 5000 {
		return fmt.Errorf("browser.viewport_height must be between 100 and 5000 pixels")
	}
	if c.Browser.Timeout <= 0 {
		return fmt.Errorf("browser.timeout must be positive")
	}
	if c.Browser.IdleTimeout < 0 {
		return fmt.Errorf("browser.idle_timeout cannot be negative")
	}

	if c.GitHub.BaseURL == "" {
		return fmt.Errorf("github.base_url is required")
	}
	if c.GitHub.LoginTimeout <= 0 {
		return fmt.Errorf("github.login_timeout must be positive")
	}

	return nil
}
