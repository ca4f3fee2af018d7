// Package identity persists the locally cached user identity. The realtime
// connection uses it for the join:user handshake so the backend can route
// user-scoped events; commands like `table login` (owned by other tools)
// write it.
package identity

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Identity is the cached user identity.
type Identity struct {
	UserID       string `yaml:"user_id"`
	RestaurantID string `yaml:"restaurant_id,omitempty"`
	Name         string `yaml:"name,omitempty"`
	Role         string `yaml:"role,omitempty"`
}

// Path returns the identity file location: $XDG_CONFIG_HOME/table/identity.yml,
// falling back to ~/.config/table/identity.yml.
func Path() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "table", "identity.yml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "table", "identity.yml"), nil
}

// Load reads the cached identity. Returns (nil, nil) when no identity is
// cached; callers treat that as "skip user-scoped features".
func Load() (*Identity, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read identity file: %w", err)
	}

	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("parse identity file: %w", err)
	}
	if id.UserID == "" {
		return nil, nil
	}
	return &id, nil
}

// Save writes the identity to disk, creating the config directory if needed.
func Save(id *Identity) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create identity directory: %w", err)
	}

	data, err := yaml.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write identity file: %w", err)
	}
	return nil
}

// Clear removes the cached identity. Missing file is not an error.
func Clear() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove identity file: %w", err)
	}
	return nil
}

// Cached is the best-effort lookup the realtime connection uses for its
// join:user side effect. Errors and absent identities both report ok=false.
func Cached() (userID, restaurantID string, ok bool) {
	id, err := Load()
	if err != nil || id == nil {
		return "", "", false
	}
	return id.UserID, id.RestaurantID, true
}
