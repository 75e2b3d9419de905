package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func hintTestSchema() *Schema {
	return &Schema{
		Name:        "test-hint",
		Description: "A hint",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"hint":  map[string]any{"type": "string", "minLength": 1},
				"level": map[string]any{"type": "string", "enum": []any{"soft", "strong"}},
				"tables": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"hint"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		raw     string
		wantErr bool
	}{
		{"valid", hintTestSchema(), `{"hint":"Проверьте дату","level":"soft"}`, false},
		{"optional fields omitted", hintTestSchema(), `{"hint":"x"}`, false},
		{"array items", hintTestSchema(), `{"hint":"x","tables":["finances"]}`, false},
		{"missing required", hintTestSchema(), `{"level":"soft"}`, true},
		{"empty hint", hintTestSchema(), `{"hint":""}`, true},
		{"wrong type", hintTestSchema(), `{"hint":42}`, true},
		{"bad enum", hintTestSchema(), `{"hint":"x","level":"loud"}`, true},
		{"bad array item", hintTestSchema(), `{"hint":"x","tables":[1]}`, true},
		{"malformed", hintTestSchema(), `{"hint":`, true},
		{"empty", hintTestSchema(), ``, true},
		{"nil schema", nil, `{"anything":"goes"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(tt.schema, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			var inv *ErrInvalidResponse
			if err != nil && !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got %T", err)
			}
		})
	}
}

func TestValidateResponse_CachesBySchemaName(t *testing.T) {
	s := hintTestSchema()
	s.Name = "test-cache"
	if err := validateResponse(s, json.RawMessage(`{"hint":"x"}`)); err != nil {
		t.Fatal(err)
	}
	if _, ok := compiled.Load("test-cache"); !ok {
		t.Fatal("schema was not cached")
	}
}
