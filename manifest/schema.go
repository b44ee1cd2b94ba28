package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jsvalidate "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "ruleflow://manifest.schema.json"

var compileOnce = sync.OnceValues(compileSchema)

// compileSchema generates the manifest JSON Schema from the Manifest struct
// and compiles it for validation.
func compileSchema() (*jsvalidate.Schema, error) {
	reflector := new(jsonschema.Reflector)
	reflector.ExpandedStruct = true

	raw, err := json.Marshal(reflector.Reflect(&Manifest{}))
	if err != nil {
		return nil, fmt.Errorf("marshaling generated manifest schema: %w", err)
	}

	compiler := jsvalidate.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("adding manifest schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling manifest schema: %w", err)
	}
	return schema, nil
}

// validateSchema checks a raw manifest document against the schema. The YAML
// document is round-tripped through JSON so the validator sees the value
// kinds it expects.
func validateSchema(data []byte) error {
	schema, err := compileOnce()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding manifest: %w", err)
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting manifest to JSON: %w", err)
	}
	var v any
	if err := json.Unmarshal(jsonDoc, &v); err != nil {
		return fmt.Errorf("converting manifest to JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("manifest does not match schema: %w", err)
	}
	return nil
}
