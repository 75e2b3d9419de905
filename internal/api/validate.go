package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var nullableString = map[string]any{"type": []any{"string", "null"}}

var tableSchemaDef = map[string]any{
	"type":     "object",
	"required": []any{"tableName", "columns"},
	"properties": map[string]any{
		"tableName": map[string]any{"type": "string", "minLength": 1},
		"title":     nullableString,
		"columns": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name", "type"},
				"properties": map[string]any{
					"name":       map[string]any{"type": "string", "minLength": 1},
					"type":       map[string]any{"type": "string"},
					"isPrimary":  map[string]any{"type": "boolean"},
					"isNullable": map[string]any{"type": "boolean"},
				},
			},
		},
	},
}

var tableDataDef = map[string]any{
	"type":     "object",
	"required": []any{"tableName", "data"},
	"properties": map[string]any{
		"tableName": map[string]any{"type": "string", "minLength": 1},
		"title":     nullableString,
		"data": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	},
}

// wrapped accepts either a single table or a {tables: [...]} envelope.
func wrapped(table map[string]any) map[string]any {
	return map[string]any{
		"anyOf": []any{
			table,
			map[string]any{
				"type":     "object",
				"required": []any{"tables"},
				"properties": map[string]any{
					"tables": map[string]any{"type": "array", "items": table},
				},
			},
		},
	}
}

var responseSchemas = map[string]map[string]any{
	"query-result": {
		"type":     "object",
		"required": []any{"columns", "rows"},
		"properties": map[string]any{
			"columns": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"uniqueItems": true,
			},
			"rows": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
			"isCorrect": map[string]any{"type": []any{"boolean", "null"}},
			"message":   nullableString,
			"error":     nullableString,
		},
	},
	"check-result": {
		"type":     "object",
		"required": []any{"isCorrect"},
		"properties": map[string]any{
			"isCorrect": map[string]any{"type": "boolean"},
		},
	},
	"schema-data": wrapped(tableSchemaDef),
	"case-data":   wrapped(tableDataDef),
	"health": {
		"type":     "object",
		"required": []any{"status", "version"},
		"properties": map[string]any{
			"status":  map[string]any{"type": "string"},
			"version": map[string]any{"type": "string"},
		},
	},
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks a response body against the named schema.
func validateBody(name string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(name)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := responseSchemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	// The compiler wants a plain decoded JSON value, so round-trip the map.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

// checkRowShape enforces that every row's keys are exactly the columns.
func checkRowShape(r *QueryResult) error {
	if r.Error != "" && len(r.Rows) > 0 {
		return fmt.Errorf("result carries both an error and %d rows", len(r.Rows))
	}
	for i, row := range r.Rows {
		if len(row) != len(r.Columns) {
			return fmt.Errorf("row %d has %d keys, want %d columns", i, len(row), len(r.Columns))
		}
		for _, col := range r.Columns {
			if _, ok := row[col]; !ok {
				return fmt.Errorf("row %d is missing column %q", i, col)
			}
		}
	}
	return nil
}
