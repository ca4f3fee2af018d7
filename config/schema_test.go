package config

import (
	"encoding/json"
	"testing"
)

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	if err != nil {
		t.Fatalf("GenerateSchema failed: %v", err)
	}

	var schema map[string]interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("Generated schema is not valid JSON: %v", err)
	}

	props, ok := schema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("Schema missing properties")
	}
	for _, key := range []string{"version", "backend", "notifications"} {
		if _, ok := props[key]; !ok {
			t.Errorf("Schema missing %q property", key)
		}
	}

	// Extension sections are inline, so unknown keys must be allowed.
	if allow, ok := schema["additionalProperties"].(bool); ok && !allow {
		t.Error("Schema must allow additional properties for extensions")
	}
}
