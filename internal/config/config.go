package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv overrides api_key when set.
const APIKeyEnv = "PIXABAY_API_KEY"

const (
	DefaultBaseURL      = "https://pixabay.com/api/"
	DefaultPerPage      = 12
	DefaultImageType    = "photo"
	DefaultOrientation  = "horizontal"
	DefaultCacheTTL     = "1h"
	DefaultHistoryLimit = 50
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
)

var (
	imageTypes   = []string{"all", "photo", "illustration", "vector"}
	orientations = []string{"all", "horizontal", "vertical"}
	logLevels    = []string{"debug", "info", "warn", "error"}
	logFormats   = []string{"console", "json"}
)

// Config represents the pix configuration
type Config struct {
	APIKey       string `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	PerPage      int    `yaml:"per_page"`
	ImageType    string `yaml:"image_type"`
	Orientation  string `yaml:"orientation"`
	SafeSearch   *bool  `yaml:"safe_search,omitempty"`
	CacheTTL     string `yaml:"cache_ttl"`
	HistoryLimit int    `yaml:"history_limit"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	safe := true
	return &Config{
		BaseURL:      DefaultBaseURL,
		PerPage:      DefaultPerPage,
		ImageType:    DefaultImageType,
		Orientation:  DefaultOrientation,
		SafeSearch:   &safe,
		CacheTTL:     DefaultCacheTTL,
		HistoryLimit: DefaultHistoryLimit,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// SafeSearchEnabled reports whether safe search is on. Unset means on.
func (c *Config) SafeSearchEnabled() bool {
	return c.SafeSearch == nil || *c.SafeSearch
}

// CacheTTLDuration returns the parsed cache TTL. Zero disables caching.
func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0
	}
	return d
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "pix")
	configPath := filepath.Join(configDir, "config.yaml")

	return &ConfigManager{
		configPath: configPath,
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't
// exist. The API key environment variable wins over the file.
func (cm *ConfigManager) Load() (*Config, error) {
	config, err := cm.loadFile()
	if err != nil {
		return nil, err
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		config.APIKey = key
	}

	return config, nil
}

// loadFile reads the file without applying environment overrides, so that
// Update never persists an environment value.
func (cm *ConfigManager) loadFile() (*Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate and set defaults for missing fields
	if err := cm.validateAndSetDefaults(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := cm.validateAndSetDefaults(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold an API key
	if err := os.WriteFile(cm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateAndSetDefaults validates configuration and sets defaults for missing fields
func (cm *ConfigManager) validateAndSetDefaults(config *Config) error {
	defaults := DefaultConfig()

	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.PerPage == 0 {
		config.PerPage = defaults.PerPage
	}
	if config.ImageType == "" {
		config.ImageType = defaults.ImageType
	}
	if config.Orientation == "" {
		config.Orientation = defaults.Orientation
	}
	if config.SafeSearch == nil {
		config.SafeSearch = defaults.SafeSearch
	}
	if config.CacheTTL == "" {
		config.CacheTTL = defaults.CacheTTL
	}
	if config.HistoryLimit == 0 {
		config.HistoryLimit = defaults.HistoryLimit
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFormat == "" {
		config.LogFormat = defaults.LogFormat
	}

	if config.PerPage < 3 || config.PerPage > 200 {
		return fmt.Errorf("per_page must be between 3 and 200")
	}
	if config.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be greater than 0")
	}
	if config.HistoryLimit > 1000 {
		return fmt.Errorf("history_limit cannot exceed 1000 items")
	}
	if d, err := time.ParseDuration(config.CacheTTL); err != nil || d < 0 {
		return fmt.Errorf("cache_ttl must be a non-negative duration such as 30m or 1h")
	}
	if err := oneOf("image_type", config.ImageType, imageTypes); err != nil {
		return err
	}
	if err := oneOf("orientation", config.Orientation, orientations); err != nil {
		return err
	}
	if err := oneOf("log_level", config.LogLevel, logLevels); err != nil {
		return err
	}
	if err := oneOf("log_format", config.LogFormat, logFormats); err != nil {
		return err
	}

	return nil
}

func oneOf(key, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Keys returns the configuration keys accepted by Get and Update, sorted.
func Keys() []string {
	keys := []string{
		"api-key", "base-url", "per-page", "image-type", "orientation",
		"safe-search", "cache-ttl", "history-limit", "log-level", "log-format",
	}
	sort.Strings(keys)
	return keys
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.loadFile()
	if err != nil {
		return err
	}

	switch key {
	case "api-key":
		config.APIKey = strings.TrimSpace(value)
	case "base-url":
		config.BaseURL = value
	case "per-page":
		perPage, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for per-page: %s", value)
		}
		config.PerPage = perPage
	case "image-type":
		config.ImageType = value
	case "orientation":
		config.Orientation = value
	case "safe-search":
		switch value {
		case "true":
			config.SafeSearch = boolPtr(true)
		case "false":
			config.SafeSearch = boolPtr(false)
		default:
			return fmt.Errorf("invalid boolean value for safe-search: %s (must be 'true' or 'false')", value)
		}
	case "cache-ttl":
		config.CacheTTL = value
	case "history-limit":
		historyLimit, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for history-limit: %s", value)
		}
		config.HistoryLimit = historyLimit
	case "log-level":
		config.LogLevel = value
	case "log-format":
		config.LogFormat = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	values, err := cm.List()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// List returns all configuration keys and values. The API key is masked.
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"api-key":       maskKey(config.APIKey),
		"base-url":      config.BaseURL,
		"per-page":      strconv.Itoa(config.PerPage),
		"image-type":    config.ImageType,
		"orientation":   config.Orientation,
		"safe-search":   strconv.FormatBool(config.SafeSearchEnabled()),
		"cache-ttl":     config.CacheTTL,
		"history-limit": strconv.Itoa(config.HistoryLimit),
		"log-level":     config.LogLevel,
		"log-format":    config.LogFormat,
	}, nil
}

// maskKey keeps the last four characters of an API key.
func maskKey(key string) string {
	if key == "" {
		return "[unset]"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func boolPtr(b bool) *bool {
	return &b
}
