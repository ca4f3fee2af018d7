package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tabletools/core/errors"
)

func TestLoadFromBytesDefaults(t *testing.T) {
	yamlContent := []byte(`
version: "1"
backend:
  url: https://api.tabletools.dev
`)

	cfg, err := LoadFromBytes(yamlContent)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Backend.URL != "https://api.tabletools.dev" {
		t.Errorf("Expected backend URL to be set, got %q", cfg.Backend.URL)
	}
	if cfg.Backend.ConnectTimeout.Std() != 20*time.Second {
		t.Errorf("Expected default connect timeout 20s, got %s", cfg.Backend.ConnectTimeout)
	}
	if cfg.Backend.MaxRetries != 5 {
		t.Errorf("Expected default max retries 5, got %d", cfg.Backend.MaxRetries)
	}
	if cfg.Notifications.Capacity != 100 {
		t.Errorf("Expected default capacity 100, got %d", cfg.Notifications.Capacity)
	}
	if !cfg.SoundEnabled() {
		t.Error("Expected sound to default to enabled")
	}
}

func TestLoadFromBytesDurations(t *testing.T) {
	yamlContent := []byte(`
backend:
  url: https://api.tabletools.dev
  connect_timeout: 5s
  reconnect_delay: 250
  ping_interval: 1m30s
`)

	cfg, err := LoadFromBytes(yamlContent)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Backend.ConnectTimeout.Std() != 5*time.Second {
		t.Errorf("Expected connect_timeout 5s, got %s", cfg.Backend.ConnectTimeout)
	}
	// Bare integers are milliseconds.
	if cfg.Backend.ReconnectDelay.Std() != 250*time.Millisecond {
		t.Errorf("Expected reconnect_delay 250ms, got %s", cfg.Backend.ReconnectDelay)
	}
	if cfg.Backend.PingInterval.Std() != 90*time.Second {
		t.Errorf("Expected ping_interval 1m30s, got %s", cfg.Backend.PingInterval)
	}
}

func TestLoadFromBytesInvalidYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("backend: [not a mapping"))
	if err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}

func TestLoadFromBytesSchemaRejectsWrongTypes(t *testing.T) {
	yamlContent := []byte(`
backend:
  url: https://api.tabletools.dev
notifications:
  capacity: "lots"
`)

	_, err := LoadFromBytes(yamlContent)
	if err == nil {
		t.Fatal("Expected schema validation error for string capacity")
	}
	if !errors.Is(err, errors.ErrCodeConfigValidation) {
		t.Errorf("Expected %s error, got: %v", errors.ErrCodeConfigValidation, err)
	}
}

// TestExtensions verifies that extension sections in table.yml are captured
// and can be decoded by the tools that own them.
func TestExtensions(t *testing.T) {
	yamlContent := []byte(`
version: "1"
backend:
  url: https://api.tabletools.dev

kitchen:
  station: grill
  max_tickets: 12
`)

	cfg, err := LoadFromBytes(yamlContent)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Extensions == nil {
		t.Fatal("Extensions map should not be nil")
	}
	if _, ok := cfg.Extensions["kitchen"]; !ok {
		t.Fatal("Expected 'kitchen' extension to be present")
	}

	type KitchenConfig struct {
		Station    string `yaml:"station"`
		MaxTickets int    `yaml:"max_tickets"`
	}

	var kitchen KitchenConfig
	if err := cfg.UnmarshalExtension("kitchen", &kitchen); err != nil {
		t.Fatalf("Failed to unmarshal kitchen extension: %v", err)
	}
	if kitchen.Station != "grill" {
		t.Errorf("Expected station 'grill', got %q", kitchen.Station)
	}
	if kitchen.MaxTickets != 12 {
		t.Errorf("Expected max_tickets 12, got %d", kitchen.MaxTickets)
	}

	// Non-existent extension keys decode to the zero value without error.
	var unknown KitchenConfig
	if err := cfg.UnmarshalExtension("voice", &unknown); err != nil {
		t.Fatalf("UnmarshalExtension should not error for non-existent keys: %v", err)
	}
	if unknown.Station != "" {
		t.Error("Expected zero value for non-existent extension")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TABLE_TEST_URL", "https://env.tabletools.dev")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"set variable", "url: ${TABLE_TEST_URL}", "url: https://env.tabletools.dev"},
		{"unset variable", "url: ${TABLE_TEST_MISSING}", "url: "},
		{"default value", "url: ${TABLE_TEST_MISSING:-https://fallback.dev}", "url: https://fallback.dev"},
		{"set wins over default", "url: ${TABLE_TEST_URL:-https://fallback.dev}", "url: https://env.tabletools.dev"},
		{"no variables", "url: plain", "url: plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(root, "table.yml")
	if err := os.WriteFile(configPath, []byte("version: \"1\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Walking up from a nested directory finds the root config.
	found, err := FindConfigFile(nested)
	if err != nil {
		t.Fatalf("FindConfigFile failed: %v", err)
	}
	if found != configPath {
		t.Errorf("Expected %s, got %s", configPath, found)
	}
}

func TestFindConfigFileNotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := FindConfigFile(t.TempDir())
	if err == nil {
		t.Fatal("Expected error when no config file exists")
	}
	if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		t.Errorf("Expected %s error, got: %v", errors.ErrCodeConfigNotFound, err)
	}
}

func TestLoadFromMergesOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	mainConfig := `
version: "1"
backend:
  url: https://api.tabletools.dev
  restaurant_id: rest_main
notifications:
  capacity: 50
  mute:
    - "staff:*"
`
	override := `
backend:
  restaurant_id: rest_override
notifications:
  mute:
    - "inventory:*"
`
	if err := os.WriteFile(filepath.Join(dir, "table.yml"), []byte(mainConfig), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "table.override.yml"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Backend.URL != "https://api.tabletools.dev" {
		t.Errorf("Expected base URL preserved, got %q", cfg.Backend.URL)
	}
	if cfg.Backend.RestaurantID != "rest_override" {
		t.Errorf("Expected override restaurant_id, got %q", cfg.Backend.RestaurantID)
	}
	if cfg.Notifications.Capacity != 50 {
		t.Errorf("Expected base capacity 50, got %d", cfg.Notifications.Capacity)
	}
	if len(cfg.Notifications.Mute) != 1 || cfg.Notifications.Mute[0] != "inventory:*" {
		t.Errorf("Expected override mute list, got %v", cfg.Notifications.Mute)
	}
}

func TestLoadFromEnvOverridesURL(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TABLE_BACKEND_URL", "https://staging.tabletools.dev")
	dir := t.TempDir()

	mainConfig := `
backend:
  url: https://api.tabletools.dev
`
	if err := os.WriteFile(filepath.Join(dir, "table.yml"), []byte(mainConfig), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Backend.URL != "https://staging.tabletools.dev" {
		t.Errorf("Expected env URL to win, got %q", cfg.Backend.URL)
	}
}

func TestLoadEnvOverridesURLExplicitPath(t *testing.T) {
	t.Setenv("TABLE_BACKEND_URL", "https://staging.tabletools.dev")
	dir := t.TempDir()

	yamlConfig := `
backend:
  url: https://api.tabletools.dev
`
	yamlPath := filepath.Join(dir, "table.yml")
	if err := os.WriteFile(yamlPath, []byte(yamlConfig), 0644); err != nil {
		t.Fatal(err)
	}

	tomlConfig := `
[backend]
url = "https://api.tabletools.dev"
`
	tomlPath := filepath.Join(dir, "table.toml")
	if err := os.WriteFile(tomlPath, []byte(tomlConfig), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{yamlPath, tomlPath} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", path, err)
		}
		if cfg.Backend.URL != "https://staging.tabletools.dev" {
			t.Errorf("Load(%s): expected env URL to win, got %q", path, cfg.Backend.URL)
		}
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	tomlConfig := `
version = "1"

[backend]
url = "https://api.tabletools.dev"
connect_timeout = "10s"

[notifications]
capacity = 25
`
	path := filepath.Join(dir, "table.toml")
	if err := os.WriteFile(path, []byte(tomlConfig), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.URL != "https://api.tabletools.dev" {
		t.Errorf("Unexpected URL: %q", cfg.Backend.URL)
	}
	if cfg.Backend.ConnectTimeout.Std() != 10*time.Second {
		t.Errorf("Expected connect_timeout 10s, got %s", cfg.Backend.ConnectTimeout)
	}
	if cfg.Notifications.Capacity != 25 {
		t.Errorf("Expected capacity 25, got %d", cfg.Notifications.Capacity)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "table.yml"))
	if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		t.Errorf("Expected %s error, got: %v", errors.ErrCodeConfigNotFound, err)
	}
}
