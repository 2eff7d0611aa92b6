package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig           `toml:"server"`
	Database DatabaseConfig         `toml:"database"`
	Fixture  FixtureConfig          `toml:"fixture"`
	Export   ExportConfig           `toml:"export"`
	Tables   map[string]TableConfig `toml:"tables"`
}

// ServerConfig points at the music library backend.
type ServerConfig struct {
	BaseURL     string `toml:"base_url"`
	SessionPath string `toml:"session_path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// FixtureConfig contains settings for the local listing server.
type FixtureConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	Path string `toml:"path"`
}

// ExportConfig contains defaults for multi-page exports.
type ExportConfig struct {
	RateLimit float64 `toml:"rate_limit"`
	Format    string  `toml:"format"`
}

// TableConfig describes one remote listing as it appears under [tables.<name>].
//
// Formatters maps a column to a formatter spec understood by formatter.Parse.
type TableConfig struct {
	Endpoint   string              `toml:"endpoint"`
	KeyPrefix  string              `toml:"key_prefix"`
	Limit      int                 `toml:"limit"`
	MultiSort  bool                `toml:"multisort"`
	Columns    []string            `toml:"columns"`
	Noun       string              `toml:"noun"`
	Args       TableArgsConfig     `toml:"args"`
	Messages   TableMessagesConfig `toml:"messages"`
	Headers    map[string]string   `toml:"headers"`
	Formatters map[string]string   `toml:"formatters"`
}

// TableArgsConfig renames the query parameters sent to a listing endpoint.
type TableArgsConfig struct {
	Limit  string `toml:"limit"`
	Offset string `toml:"offset"`
	Search string `toml:"search"`
	Sort   string `toml:"sort"`
}

// TableMessagesConfig overrides status messages.
type TableMessagesConfig struct {
	Loading string `toml:"loading"`
	Failed  string `toml:"failed"`
	Summary string `toml:"summary"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Table looks up a configured table by name.
func (c *Config) Table(name string) (TableConfig, error) {
	tc, ok := c.Tables[name]
	if !ok {
		return TableConfig{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return tc, nil
}

// TableNames returns the configured table names in sorted order.
func (c *Config) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EndpointURL resolves endpoint against [ServerConfig.BaseURL].
//
// Absolute endpoints are returned unchanged and an empty endpoint stays empty.
func (c *Config) EndpointURL(endpoint string) (string, error) {
	if endpoint == "" {
		return "", nil
	}

	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: endpoint %q: %v", ErrInvalidConfig, endpoint, err)
	}
	if ref.IsAbs() {
		return endpoint, nil
	}

	if c.Server.BaseURL == "" {
		return "", fmt.Errorf("%w: server.base_url is required for relative endpoint %q", ErrInvalidConfig, endpoint)
	}

	base, err := url.Parse(strings.TrimSuffix(c.Server.BaseURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("%w: server.base_url: %v", ErrInvalidConfig, err)
	}

	return base.ResolveReference(&url.URL{Path: strings.TrimPrefix(ref.Path, "/"), RawQuery: ref.RawQuery}).String(), nil
}
