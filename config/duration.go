package config

import (
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from human-readable strings
// ("20s", "1m30s") in both YAML and TOML configuration files.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the human-readable form.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// JSONSchema reports durations as either a "20s"-style string or an
// integer millisecond count.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", Pattern: `^(\d+(\.\d+)?(ns|us|µs|ms|s|m|h))+$`},
			{Type: "integer"},
		},
		Description: "Duration as a string ('20s', '1m30s') or integer milliseconds",
	}
}

// UnmarshalYAML implements yaml.Unmarshaler. Plain integers are accepted as
// milliseconds for compatibility with older configs.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return d.set(raw)
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML configs.
func (d *Duration) UnmarshalText(text []byte) error {
	return d.set(string(text))
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) set(raw interface{}) error {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	case int:
		*d = Duration(time.Duration(v) * time.Millisecond)
		return nil
	case int64:
		*d = Duration(time.Duration(v) * time.Millisecond)
		return nil
	case float64:
		*d = Duration(time.Duration(v) * time.Millisecond)
		return nil
	default:
		return fmt.Errorf("invalid duration value %v (%T)", raw, raw)
	}
}
