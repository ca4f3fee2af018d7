package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tabletools/core/errors"
)

// Validate performs semantic validation beyond what the JSON schema covers.
func (c *Config) Validate() error {
	if c.Backend.URL != "" {
		if err := validateBackendURL(c.Backend.URL); err != nil {
			return err
		}
	}

	if c.Backend.MaxRetries < 0 {
		return errors.ConfigInvalid("backend.max_retries must not be negative")
	}
	if c.Notifications.Capacity < 1 {
		return errors.ConfigInvalid("notifications.capacity must be at least 1")
	}
	if c.Backend.ReconnectDelay.Std() > c.Backend.ReconnectDelayMax.Std() {
		return errors.ConfigInvalid(fmt.Sprintf(
			"backend.reconnect_delay (%s) must not exceed backend.reconnect_delay_max (%s)",
			c.Backend.ReconnectDelay, c.Backend.ReconnectDelayMax))
	}

	for _, pattern := range c.Notifications.Mute {
		if strings.TrimSpace(pattern) == "" {
			return errors.ConfigInvalid("notifications.mute must not contain empty patterns")
		}
	}

	return nil
}

// RequireBackend ensures a backend endpoint is configured. Commands that
// talk to the realtime service or REST API call this before connecting.
func (c *Config) RequireBackend() error {
	if c.Backend.URL == "" {
		return errors.EndpointMissing()
	}
	return validateBackendURL(c.Backend.URL)
}

func validateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("backend.url is not a valid URL: %v", err))
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("backend.url has unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return errors.ConfigInvalid("backend.url is missing a host")
	}
	return nil
}
