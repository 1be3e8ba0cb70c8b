package semantic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// assessmentSchema is the JSON-Schema (draft 2020-12 subset) every oracle
// response must satisfy before it is trusted. Anything that fails validation
// is discarded in favor of the fallback assessment.
func assessmentSchema() map[string]any {
	number := map[string]any{"type": []string{"number", "null"}}
	str := map[string]any{"type": []string{"string", "null"}}

	return map[string]any{
		"type":     "object",
		"required": []string{"checks", "fraud_likelihood"},
		"properties": map[string]any{
			"merchant": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":             str,
					"confidence":       map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
					"matched_template": str,
				},
			},
			"extracted": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"currency":   str,
					"date":       str,
					"time":       str,
					"subtotal":   number,
					"tax":        number,
					"total":      number,
					"receipt_id": str,
				},
			},
			"checks": map[string]any{
				"type": "object",
				"required": []string{
					"math_consistent", "tax_plausible",
					"formatting_plausible", "merchant_plausible",
				},
				"properties": map[string]any{
					"math_consistent":      map[string]any{"type": "boolean"},
					"tax_plausible":        map[string]any{"type": "boolean"},
					"formatting_plausible": map[string]any{"type": "boolean"},
					"merchant_plausible":   map[string]any{"type": "boolean"},
					"suspicious_patterns": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
			},
			"fraud_likelihood": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"explanation":      str,
		},
	}
}

// validateAgainstSchema checks a raw oracle document against the assessment
// schema.
func validateAgainstSchema(data []byte) error {
	schemaBytes, err := json.Marshal(assessmentSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("assessment.json", bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("assessment.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
