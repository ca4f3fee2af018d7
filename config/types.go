package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

//go:generate go run ../tools/schema-generator/

// BackendConfig describes how to reach the Tabletools backend.
type BackendConfig struct {
	// URL is the base endpoint for the realtime connection and the
	// notification API, e.g. "wss://api.tabletools.dev" or "http://localhost:4000".
	// Required for any command that talks to the backend. Can be overridden by
	// the TABLE_BACKEND_URL environment variable.
	URL string `yaml:"url" toml:"url" jsonschema:"description=Base URL of the Tabletools backend" jsonschema_extras:"x-priority=1,x-important=true"`

	// RestaurantID scopes the realtime subscription to a single restaurant.
	RestaurantID string `yaml:"restaurant_id,omitempty" toml:"restaurant_id,omitempty" jsonschema:"description=Restaurant to join on connect"`

	// ConnectTimeout bounds the websocket handshake. Defaults to 20s.
	ConnectTimeout Duration `yaml:"connect_timeout,omitempty" toml:"connect_timeout,omitempty" jsonschema:"description=Websocket handshake timeout (default 20s)"`

	// RequestTimeout bounds each notification API call. Defaults to 15s.
	RequestTimeout Duration `yaml:"request_timeout,omitempty" toml:"request_timeout,omitempty" jsonschema:"description=HTTP request timeout for the notification API (default 15s)"`

	// MaxRetries is the reconnection attempt budget. Defaults to 5.
	MaxRetries int `yaml:"max_retries,omitempty" toml:"max_retries,omitempty" jsonschema:"description=Reconnection attempts before giving up (default 5)"`

	// ReconnectDelay is the initial backoff delay. Defaults to 1s.
	ReconnectDelay Duration `yaml:"reconnect_delay,omitempty" toml:"reconnect_delay,omitempty" jsonschema:"description=Initial reconnection delay (default 1s)"`

	// ReconnectDelayMax caps the backoff delay. Defaults to 5s.
	ReconnectDelayMax Duration `yaml:"reconnect_delay_max,omitempty" toml:"reconnect_delay_max,omitempty" jsonschema:"description=Reconnection delay ceiling (default 5s)"`

	// PingInterval is the keepalive ping cadence. Defaults to 25s.
	PingInterval Duration `yaml:"ping_interval,omitempty" toml:"ping_interval,omitempty" jsonschema:"description=Keepalive ping interval (default 25s)"`

	// PingTimeout is how long to wait for traffic before declaring the
	// connection dead. Defaults to 60s.
	PingTimeout Duration `yaml:"ping_timeout,omitempty" toml:"ping_timeout,omitempty" jsonschema:"description=Keepalive timeout (default 60s)"`
}

// NotificationsConfig tunes the client-side notification store.
type NotificationsConfig struct {
	// Capacity bounds the in-memory notification list. Defaults to 100.
	Capacity int `yaml:"capacity,omitempty" toml:"capacity,omitempty" jsonschema:"description=Maximum notifications kept in memory (default 100)"`

	// Sound enables the audible alert for high-priority notifications.
	Sound *bool `yaml:"sound,omitempty" toml:"sound,omitempty" jsonschema:"description=Play an audible alert for urgent notifications (default true)"`

	// AutoReadDelay is how long a low-priority notification stays unread
	// before it is automatically marked read. Defaults to 5s. Zero disables.
	AutoReadDelay Duration `yaml:"auto_read_delay,omitempty" toml:"auto_read_delay,omitempty" jsonschema:"description=Delay before low-priority notifications auto-mark read (default 5s)"`

	// Mute lists event-name patterns to drop before dispatch, using
	// .dockerignore-style matching, e.g. ["staff:*", "!staff:clock_in"].
	Mute []string `yaml:"mute,omitempty" toml:"mute,omitempty" jsonschema:"description=Event name patterns to silence"`
}

// Config is the root of a table.yml configuration file.
type Config struct {
	Version       string              `yaml:"version" toml:"version" jsonschema:"required,description=Configuration version (e.g. '1.0')"`
	Backend       BackendConfig       `yaml:"backend,omitempty" toml:"backend,omitempty" jsonschema:"description=Backend connection settings"`
	Notifications NotificationsConfig `yaml:"notifications,omitempty" toml:"notifications,omitempty" jsonschema:"description=Notification store settings"`

	// Extensions holds tool-specific configuration sections that the core
	// schema does not model, decoded on demand via UnmarshalExtension.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" jsonschema:"-"`
}

// Default tuning values, matching the backend's published client contract.
const (
	DefaultConnectTimeout    = 20 * time.Second
	DefaultRequestTimeout    = 15 * time.Second
	DefaultMaxRetries        = 5
	DefaultReconnectDelay    = time.Second
	DefaultReconnectDelayMax = 5 * time.Second
	DefaultPingInterval      = 25 * time.Second
	DefaultPingTimeout       = 60 * time.Second
	DefaultCapacity          = 100
	DefaultAutoReadDelay     = 5 * time.Second
)

// SetDefaults fills zero-valued tuning fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Backend.ConnectTimeout == 0 {
		c.Backend.ConnectTimeout = Duration(DefaultConnectTimeout)
	}
	if c.Backend.RequestTimeout == 0 {
		c.Backend.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if c.Backend.MaxRetries == 0 {
		c.Backend.MaxRetries = DefaultMaxRetries
	}
	if c.Backend.ReconnectDelay == 0 {
		c.Backend.ReconnectDelay = Duration(DefaultReconnectDelay)
	}
	if c.Backend.ReconnectDelayMax == 0 {
		c.Backend.ReconnectDelayMax = Duration(DefaultReconnectDelayMax)
	}
	if c.Backend.PingInterval == 0 {
		c.Backend.PingInterval = Duration(DefaultPingInterval)
	}
	if c.Backend.PingTimeout == 0 {
		c.Backend.PingTimeout = Duration(DefaultPingTimeout)
	}
	if c.Notifications.Capacity == 0 {
		c.Notifications.Capacity = DefaultCapacity
	}
	if c.Notifications.Sound == nil {
		enabled := true
		c.Notifications.Sound = &enabled
	}
	if c.Notifications.AutoReadDelay == 0 {
		c.Notifications.AutoReadDelay = Duration(DefaultAutoReadDelay)
	}
}

// SoundEnabled reports whether the audible alert is enabled.
func (c *Config) SoundEnabled() bool {
	return c.Notifications.Sound == nil || *c.Notifications.Sound
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded table.yml into the provided target struct. The target must be a pointer.
// This provides a type-safe way for tools to access their custom configuration
// sections.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{}
	// into the strongly-typed target struct. We configure it to use
	// `yaml` tags for consistency.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
