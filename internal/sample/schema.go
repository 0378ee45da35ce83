package sample

import "github.com/abhisek/mockprep/internal/llm"

// AnswerSchema is the structured output requested from the model.
var AnswerSchema = &llm.Schema{
	Name:        "sample-answer",
	Description: "A model answer to an interview question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sample_answer": map[string]any{
				"type":        "string",
				"description": "A strong first-person answer, 120-220 words",
			},
			"key_points": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 things the answer demonstrates (5-10 words each)",
			},
		},
		"required":             []any{"sample_answer", "key_points"},
		"additionalProperties": false,
	},
}
