package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/tabletools/core/errors"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads and parses a Tabletools configuration file. Files ending in
// .toml are parsed as TOML; everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	if strings.HasSuffix(path, ".toml") {
		return loadTOML(data, path)
	}
	return LoadFromBytes(data)
}

// LoadDefault finds and loads the configuration with hierarchical merging:
// 1. Global config (~/.config/table/table.yml) - base layer
// 2. Project config (table.yml) - overrides global
// 3. Local override (table.override.yml) - overrides all
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Config, error) {
	// Find project config file first (it's required)
	projectPath, err := FindConfigFile(startDir)
	if err != nil {
		return nil, err
	}

	// Start with an empty config
	var finalConfig *Config

	// 1. Load global config if it exists (optional)
	globalPath := getXDGConfigPath()
	if globalPath != "" {
		if _, err := os.Stat(globalPath); err == nil {
			if globalConfig, err := parseFile(globalPath); err == nil {
				finalConfig = globalConfig
			}
			// Parse failures of the optional global layer are ignored
		}
	}

	// 2. Load and merge project config (required)
	projectConfig, err := parseFile(projectPath)
	if err != nil {
		return nil, err
	}

	if finalConfig == nil {
		finalConfig = projectConfig
	} else {
		finalConfig = mergeConfigs(finalConfig, projectConfig)
	}

	// 3. Load and merge override files if they exist (optional)
	projectDir := filepath.Dir(projectPath)
	overrideFiles := []string{
		filepath.Join(projectDir, "table.override.yml"),
		filepath.Join(projectDir, "table.override.yaml"),
		filepath.Join(projectDir, ".table.override.yml"),
		filepath.Join(projectDir, ".table.override.yaml"),
	}

	for _, overridePath := range overrideFiles {
		if _, err := os.Stat(overridePath); err == nil {
			overrideConfig, err := parseFile(overridePath)
			if err != nil {
				continue // Skip unparseable override files
			}
			finalConfig = mergeConfigs(finalConfig, overrideConfig)
		}
	}

	applyEnvOverrides(finalConfig)

	// Set defaults and validate
	finalConfig.SetDefaults()

	if err := finalConfig.Validate(); err != nil {
		return nil, err
	}

	return finalConfig, nil
}

// LoadFromBytes parses YAML configuration from a byte array
func LoadFromBytes(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	// Validate the raw document against the embedded schema before decoding
	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.ValidateYAML([]byte(expanded)); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
	}

	applyEnvOverrides(&config)

	// Set defaults
	config.SetDefaults()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err // Already returns structured error from validation
	}

	return &config, nil
}

// loadTOML parses a table.toml configuration file.
func loadTOML(data []byte, path string) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := toml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration").
			WithDetail("path", path)
	}

	applyEnvOverrides(&config)

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyEnvOverrides applies environment variables that always win over
// file values, whichever load path produced the config.
func applyEnvOverrides(config *Config) {
	if url := os.Getenv("TABLE_BACKEND_URL"); url != "" {
		config.Backend.URL = url
	}
}

// parseFile loads a single config layer without defaults or validation,
// so merging happens on raw values.
func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config").
			WithDetail("path", path)
	}

	expanded := expandEnvVars(string(data))

	var config Config
	if strings.HasSuffix(path, ".toml") {
		if err := toml.Unmarshal([]byte(expanded), &config); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML config").
				WithDetail("path", path)
		}
		return &config, nil
	}

	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config").
			WithDetail("path", path)
	}
	return &config, nil
}

// FindConfigFile searches for table configuration files with the following precedence:
// 1. Current directory up to filesystem root
// 2. XDG config directory (~/.config/table/table.yml)
func FindConfigFile(startDir string) (string, error) {
	configNames := []string{
		"table.yml",
		"table.yaml",
		"table.toml",
		".table.yml",
		".table.yaml",
	}

	// 1. Search from current directory up to filesystem root
	dir := startDir
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// 2. Check XDG config directory
	if xdgConfigPath := getXDGConfigPath(); xdgConfigPath != "" {
		if info, err := os.Stat(xdgConfigPath); err == nil && !info.IsDir() {
			return xdgConfigPath, nil
		}
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// getXDGConfigPath returns the XDG config path for Tabletools
func getXDGConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "table", "table.yml")
	}

	// Fall back to ~/.config
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "table", "table.yml")
	}

	return ""
}

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	if override.Backend.URL != "" {
		result.Backend.URL = override.Backend.URL
	}
	if override.Backend.RestaurantID != "" {
		result.Backend.RestaurantID = override.Backend.RestaurantID
	}
	if override.Backend.ConnectTimeout != 0 {
		result.Backend.ConnectTimeout = override.Backend.ConnectTimeout
	}
	if override.Backend.RequestTimeout != 0 {
		result.Backend.RequestTimeout = override.Backend.RequestTimeout
	}
	if override.Backend.MaxRetries != 0 {
		result.Backend.MaxRetries = override.Backend.MaxRetries
	}
	if override.Backend.ReconnectDelay != 0 {
		result.Backend.ReconnectDelay = override.Backend.ReconnectDelay
	}
	if override.Backend.ReconnectDelayMax != 0 {
		result.Backend.ReconnectDelayMax = override.Backend.ReconnectDelayMax
	}
	if override.Backend.PingInterval != 0 {
		result.Backend.PingInterval = override.Backend.PingInterval
	}
	if override.Backend.PingTimeout != 0 {
		result.Backend.PingTimeout = override.Backend.PingTimeout
	}

	if override.Notifications.Capacity != 0 {
		result.Notifications.Capacity = override.Notifications.Capacity
	}
	if override.Notifications.Sound != nil {
		result.Notifications.Sound = override.Notifications.Sound
	}
	if override.Notifications.AutoReadDelay != 0 {
		result.Notifications.AutoReadDelay = override.Notifications.AutoReadDelay
	}
	if len(override.Notifications.Mute) > 0 {
		result.Notifications.Mute = override.Notifications.Mute
	}

	// Extension sections replace wholesale
	if len(override.Extensions) > 0 {
		if result.Extensions == nil {
			result.Extensions = make(map[string]interface{}, len(override.Extensions))
		}
		for k, v := range override.Extensions {
			result.Extensions[k] = v
		}
	}

	return &result
}
