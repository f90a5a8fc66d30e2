package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema defines the structure for payload schemas
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	MinLength   *int   `json:"minLength,omitempty"`
	MaxLength   *int   `json:"maxLength,omitempty"`
}

// toSchemaMap converts the typed schema into the generic form gojsonschema expects.
func toSchemaMap(schema JSONSchema) map[string]interface{} {
	props := map[string]interface{}{}
	for name, p := range schema.Properties {
		prop := map[string]interface{}{"type": p.Type}
		if p.MinLength != nil {
			prop["minLength"] = *p.MinLength
		}
		if p.MaxLength != nil {
			prop["maxLength"] = *p.MaxLength
		}
		props[name] = prop
	}
	return map[string]interface{}{
		"type":                 schema.Type,
		"properties":           props,
		"required":             schema.Required,
		"additionalProperties": schema.AdditionalProperties,
	}
}

// Validate checks data against the schema and returns a single error listing
// every violation, or nil when the payload is valid.
func Validate(data map[string]interface{}, schema JSONSchema) error {
	schemaLoader := gojsonschema.NewGoLoader(toSchemaMap(schema))
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return fmt.Errorf("invalid payload: %s", strings.Join(errs, "; "))
	}

	return nil
}

func IntPtr(i int) *int {
	return &i
}
