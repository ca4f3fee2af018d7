package schema

// ExtensionSchemaURLs maps Tabletools extension keys to the canonical URL of
// their JSON schema. Satellite tools publish their own schemas, and this
// manifest is used to compose them into a unified schema for validation and
// IDE support.
//
// Extension schemas are added here as the tools that own them publish
// release assets.
var ExtensionSchemaURLs = map[string]string{
	// "kitchen": "https://schemas.tabletools.dev/kitchen/v1.schema.json",
	// "voice":   "https://schemas.tabletools.dev/voice/v1.schema.json",
}
