package classifier

import "github.com/abhisek/whomadeit/internal/llm"

// GuessSchema describes the object the model is asked to return. It is used
// to type-check parsed output, not as a provider-side constraint.
var GuessSchema = &llm.Schema{
	Name:        "inventor-guess",
	Description: "The primary creator of an item, their presumed gender, and a category",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"result": map[string]any{
				"type":        "string",
				"description": "man, woman, natural or unknown",
			},
			"creator_name": map[string]any{
				"type":        []any{"string", "null"},
				"description": "Full name of the primary creator",
			},
			"category": map[string]any{
				"type":        []any{"string", "null"},
				"description": "Category such as Technology, Medicine or Literature",
			},
			"explanation": map[string]any{
				"type":        []any{"string", "null"},
				"description": "Brief one or two sentence explanation",
			},
		},
	},
}
