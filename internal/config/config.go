package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
)

// Environment variables that override the config file
const (
	EnvAPIURL   = "TOURDECK_API_URL"
	EnvAPIToken = "TOURDECK_API_TOKEN"
	EnvCountry  = "TOURDECK_COUNTRY"
	EnvPageSize = "TOURDECK_PAGE_LIMIT"
	EnvShareURL = "TOURDECK_SHARE_URL"
)

// Config represents the application configuration
type Config struct {
	Version int             `toml:"version"`
	API     APISettings     `toml:"api"`
	Session SessionSettings `toml:"session"`
	UI      UISettings      `toml:"ui"`
}

// APISettings configures the tours backend client
type APISettings struct {
	BaseURL           string  `toml:"base_url"`
	Token             string  `toml:"token,omitempty"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Timeout returns the request timeout as a duration
func (a APISettings) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// SessionSettings holds the externally supplied selection context
type SessionSettings struct {
	CountryID string `toml:"country_id"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	PageLimit    int    `toml:"page_limit"`
	LogFile      string `toml:"log_file"`
	ShareBaseURL string `toml:"share_base_url,omitempty"` // prefix for shareable links
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "tourdeck", "config.toml"),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// NewConfigServiceAt creates a config service bound to a specific file
func NewConfigServiceAt(path string, bus eventbus.EventBus) ConfigService {
	return &configService{bus: bus, filePath: path}
}

// Path returns the file the service loads from and saves to
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cs.publish(domain.ConfigLoadedEvent{Path: ""})
		return cfg, nil
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}

	cs.publish(domain.ConfigLoadedEvent{Path: cs.filePath})
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	cs.publish(domain.ConfigSavedEvent{})
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so missing keys keep sane values
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold an API token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (cs *configService) publish(event domain.DomainEvent) {
	if cs.bus != nil {
		cs.bus.Publish(event)
	}
}

// ApplyEnv overlays values from a .env file (if present) and the process
// environment onto cfg. Variables already set in the environment win over .env.
func ApplyEnv(cfg *Config, envFiles ...string) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("[config] No .env file found, using process environment")
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv(EnvCountry); v != "" {
		cfg.Session.CountryID = v
	}
	if v := os.Getenv(EnvShareURL); v != "" {
		cfg.UI.ShareBaseURL = v
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UI.PageLimit = n
		} else {
			log.Printf("[config] ignoring %s=%q: %v", EnvPageSize, v, err)
		}
	}
	cfg.normalize()
}

// normalize replaces out-of-range values with defaults
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = def.API.TimeoutSeconds
	}
	if c.API.RequestsPerSecond <= 0 {
		c.API.RequestsPerSecond = def.API.RequestsPerSecond
	}
	if c.UI.PageLimit < 1 || c.UI.PageLimit > 100 {
		c.UI.PageLimit = def.UI.PageLimit
	}
	if c.UI.LogFile == "" {
		c.UI.LogFile = def.UI.LogFile
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APISettings{
			BaseURL:           "http://localhost:8080/api",
			TimeoutSeconds:    15,
			RequestsPerSecond: 5,
		},
		UI: UISettings{
			PageLimit: 10,
			LogFile:   "tourdeck.log",
		},
	}
}
