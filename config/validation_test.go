package config

import (
	"testing"
	"time"

	"github.com/tabletools/core/errors"
)

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Backend.URL = "wss://rt.tabletools.dev"
		c.SetDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default config", func(c *Config) {}, false},
		{"empty URL allowed", func(c *Config) { c.Backend.URL = "" }, false},
		{"bad URL scheme", func(c *Config) { c.Backend.URL = "ftp://host" }, true},
		{"URL without host", func(c *Config) { c.Backend.URL = "https://" }, true},
		{"negative retries", func(c *Config) { c.Backend.MaxRetries = -1 }, true},
		{"zero capacity", func(c *Config) { c.Notifications.Capacity = 0 }, true},
		{"delay exceeds ceiling", func(c *Config) {
			c.Backend.ReconnectDelay = Duration(10 * time.Second)
			c.Backend.ReconnectDelayMax = Duration(2 * time.Second)
		}, true},
		{"empty mute pattern", func(c *Config) { c.Notifications.Mute = []string{"  "} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestRequireBackend(t *testing.T) {
	c := &Config{}
	c.SetDefaults()

	err := c.RequireBackend()
	if !errors.Is(err, errors.ErrCodeEndpointMissing) {
		t.Errorf("Expected %s error, got: %v", errors.ErrCodeEndpointMissing, err)
	}

	c.Backend.URL = "wss://rt.tabletools.dev"
	if err := c.RequireBackend(); err != nil {
		t.Errorf("Unexpected error with URL set: %v", err)
	}
}
