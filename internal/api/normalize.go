package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeJSON decodes raw into v keeping numbers as json.Number.
func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// decodeTables accepts either a single table object or a {tables: [...]}
// envelope and always returns a list.
func decodeTables[T any](raw []byte) ([]T, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}

	if inner, ok := fields["tables"]; ok {
		var tables []T
		if err := decodeJSON(inner, &tables); err != nil {
			return nil, fmt.Errorf("decode tables: %w", err)
		}
		if tables == nil {
			tables = []T{}
		}
		return tables, nil
	}

	var single T
	if err := decodeJSON(raw, &single); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	return []T{single}, nil
}

// parseDetail extracts the error detail from a backend error body. The
// detail is usually a string; validation failures carry a list of
// {msg} objects instead.
func parseDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &list); err == nil && len(list) > 0 {
		return list[0].Msg
	}
	return ""
}

func detailOr(raw []byte, fallback string) string {
	if d := parseDetail(raw); d != "" {
		return d
	}
	return fallback
}
