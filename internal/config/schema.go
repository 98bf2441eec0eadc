// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the generated settings schema.
const SchemaID = "https://lifefork.dev/schemas/settings.schema.json"

var (
	schemaOnce     sync.Once
	schemaCompiled *jschema.Schema
	schemaErr      error
)

// GenerateSchema generates a JSON Schema from the Settings struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		// global and user keep unknown keys as extras.
		AllowAdditionalProperties: true,
	}
	schema := r.Reflect(&Settings{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Lifefork Settings"
	schema.Description = "Schema for lifefork simulation settings files (YAML or JSON)"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateSchema validates a YAML or JSON settings document against the
// settings schema.
func ValidateSchema(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrInvalid("settings", "document is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code(CodeConfigInvalid).With("field", "settings").Wrapf(err, "invalid YAML")
	}

	// Re-encode through JSON so numbers reach the validator as json.Number.
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return oops.Code(CodeConfigInvalid).With("field", "settings").Wrapf(err, "settings are not JSON-compatible")
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return oops.Code(CodeConfigInvalid).With("field", "settings").Wrapf(err, "settings are not JSON-compatible")
	}

	sch, err := compiledSchema()
	if err != nil {
		return oops.Wrapf(err, "compile settings schema")
	}

	if err := sch.Validate(inst); err != nil {
		return oops.Code(CodeConfigInvalid).
			With("field", "settings").
			Wrapf(err, "schema validation failed")
	}
	return nil
}

func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaCompiled, schemaErr = compileSchema()
	})
	return schemaCompiled, schemaErr
}

func compileSchema() (*jschema.Schema, error) {
	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	schemaData, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("settings.schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	sch, err := c.Compile("settings.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// FormatSchemaError strips wrapping prefixes from a validation error for display.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.Index(msg, "schema validation failed: "); i >= 0 {
		msg = msg[i+len("schema validation failed: "):]
	}
	return msg
}
