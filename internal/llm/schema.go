package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaName versions the structured-output contract. Bump it when the
// question shape changes.
const SchemaName = "exam_questions_v1"

// ExamSchema returns the JSON Schema the model reply must conform to. It is
// passed to the provider as a strict structured-output constraint and used
// locally as a contract self-check.
func ExamSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"category", "questions"},
		"properties": map[string]any{
			"category": map[string]any{"type": "string"},
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required": []string{
						"number", "title", "options", "correct_index",
						"detected_answer_method", "warnings", "source_refs",
					},
					"properties": map[string]any{
						"number": map[string]any{"type": "integer", "minimum": 1},
						"title":  map[string]any{"type": "string", "minLength": 1},
						"options": map[string]any{
							"type":     "array",
							"minItems": 4,
							"maxItems": 4,
							"items":    map[string]any{"type": "string", "minLength": 1},
						},
						"correct_index": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
						"detected_answer_method": map[string]any{
							"type": "string",
							"enum": []string{"asterisk", "highlight", "answer_key", "inferred"},
						},
						"warnings": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"source_refs": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type":                 "object",
								"additionalProperties": false,
								"required":             []string{"kind", "index"},
								"properties": map[string]any{
									"kind":  map[string]any{"type": "string", "enum": []string{"paragraph", "line"}},
									"index": map[string]any{"type": "integer", "minimum": 0},
								},
							},
						},
					},
				},
			},
		},
	}
}

// ValidateAgainstSchema validates data against schemaMap. The structural
// validator in the question package stays authoritative for the repair loop;
// this is the contract check on what "strict" providers actually return.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
