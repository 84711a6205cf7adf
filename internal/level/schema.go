// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package level

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the level pack schema.
const SchemaID = "https://holomush.dev/schemas/lightwell/level-pack.schema.json"

var (
	schemaOnce     sync.Once
	schemaCompiled *jschema.Schema
	schemaErr      error
)

// GenerateSchema generates the JSON Schema for level pack files.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		FieldNameTag:               "yaml",
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&Pack{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Lightwell Level Pack"
	schema.Description = "Schema for level pack YAML files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_INVALID").With("operation", "marshal schema").Wrap(err)
	}
	return data, nil
}

// ValidateSchema validates YAML pack data against the level pack schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code("PACK_PARSE_FAILED").Errorf("pack data is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("PACK_PARSE_FAILED").Wrapf(err, "invalid YAML")
	}

	// Round-trip through JSON so the validator sees JSON value types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return oops.Code("PACK_PARSE_FAILED").Wrapf(err, "pack is not representable as JSON")
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return oops.Code("PACK_PARSE_FAILED").Wrap(err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(inst); err != nil {
		return oops.Code("SCHEMA_INVALID").Wrapf(err, "schema validation failed")
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
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, oops.Code("SCHEMA_INVALID").With("operation", "parse schema").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("level-pack.schema.json", doc); err != nil {
		return nil, oops.Code("SCHEMA_INVALID").With("operation", "add schema resource").Wrap(err)
	}
	sch, err := c.Compile("level-pack.schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_INVALID").With("operation", "compile schema").Wrap(err)
	}
	return sch, nil
}

// FormatSchemaError trims wrapper text from a schema validation error.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), "schema validation failed: ")
}
