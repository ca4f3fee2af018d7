package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tabletools/core/schema"
)

// SchemaValidator validates configuration against the embedded JSON Schema.
// This is a wrapper around schema.Validator so callers don't need to import
// the schema package directly.
type SchemaValidator struct {
	validator *schema.Validator
}

// NewSchemaValidator creates a new schema validator, loading the embedded schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}
	return &SchemaValidator{validator: validator}, nil
}

// Validate validates configuration data against the schema.
func (v *SchemaValidator) Validate(configData interface{}) error {
	return v.validator.Validate(configData)
}

// ValidateYAML validates a raw YAML document against the schema before it
// is decoded into typed configuration.
func (v *SchemaValidator) ValidateYAML(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML for validation: %w", err)
	}
	if doc == nil {
		return nil
	}
	return v.validator.Validate(doc)
}
