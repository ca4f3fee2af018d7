package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the base JSON Schema for the Tabletools
// configuration. It reflects the known sections of table.yml; extension
// sections are inline and therefore allowed as additional properties.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Extension tools attach their own top-level sections.
		AllowAdditionalProperties: true,
		// Expand struct references instead of using $ref for cleaner base schema.
		ExpandedStruct: true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	type BaseConfig struct {
		Version       string              `yaml:"version,omitempty" jsonschema:"description=Configuration version (e.g. '1')"`
		Backend       BackendConfig       `yaml:"backend,omitempty" jsonschema:"description=Realtime and REST backend connection settings"`
		Notifications NotificationsConfig `yaml:"notifications,omitempty" jsonschema:"description=Notification store and display settings"`
	}

	schema := r.Reflect(&BaseConfig{})
	schema.Title = "Tabletools Configuration"
	schema.Description = "Base schema for table.yml properties."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
