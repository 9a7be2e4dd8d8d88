// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

var (
	schemaOnce     sync.Once
	recordSchema   map[string]any
	compiledSchema *santhosh.Schema
	schemaErr      error
)

// Schema returns the JSON Schema of a SummaryRecord in the strict form
// structured-output APIs accept: every object closed, every property
// required.
func Schema() (map[string]any, error) {
	schemaOnce.Do(buildSchema)
	return recordSchema, schemaErr
}

// Validate checks data against the SummaryRecord schema.
func Validate(data []byte) error {
	schemaOnce.Do(buildSchema)
	if schemaErr != nil {
		return schemaErr
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

func buildSchema() {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Anonymous:                  true,
	}
	b, err := reflector.Reflect(types.SummaryRecord{}).MarshalJSON()
	if err != nil {
		schemaErr = fmt.Errorf("reflecting record schema: %w", err)
		return
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		schemaErr = fmt.Errorf("decoding record schema: %w", err)
		return
	}
	delete(m, "$id")
	ensureStrict(m)

	raw, err := json.Marshal(m)
	if err != nil {
		schemaErr = fmt.Errorf("encoding record schema: %w", err)
		return
	}
	compiler := santhosh.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(raw)); err != nil {
		schemaErr = fmt.Errorf("add schema: %w", err)
		return
	}
	compiled, err := compiler.Compile("record.json")
	if err != nil {
		schemaErr = fmt.Errorf("compile schema: %w", err)
		return
	}
	recordSchema, compiledSchema = m, compiled
}

// ensureStrict closes every object schema and marks all of its properties
// required, recursing through properties and array items.
func ensureStrict(schema map[string]any) {
	if t, ok := schema[typeKey].(string); ok && t == "object" {
		schema[additionalPropertiesKey] = false
		if props, ok := schema[propertiesKey].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			sort.Strings(required)
			if len(required) > 0 {
				schema[requiredKey] = required
			}
		}
	}
	if props, ok := schema[propertiesKey].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				ensureStrict(pm)
			}
		}
	}
	if items, ok := schema[itemsKey].(map[string]any); ok {
		ensureStrict(items)
	}
}
