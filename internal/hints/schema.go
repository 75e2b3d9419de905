package hints

import "github.com/abhisek/sleuth/internal/llm"

// HintSchema is the structured output requested from the model.
var HintSchema = &llm.Schema{
	Name:        "case-hint",
	Description: "A short nudge towards the next step of an SQL investigation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"minLength":   1,
				"maxLength":   400,
				"description": "One or two sentences in Russian. Never a complete query.",
			},
		},
		"required":             []any{"hint"},
		"additionalProperties": false,
	},
}
