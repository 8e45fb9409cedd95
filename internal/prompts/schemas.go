package prompts

// Response schemas for the structured stages, in JSON-schema notation.

func FlashcardSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"front": map[string]any{"type": "string"},
				"back":  map[string]any{"type": "string"},
			},
			"required":         []string{"front", "back"},
			"propertyOrdering": []string{"front", "back"},
		},
	}
}

func QuizSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string"},
				"options": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"correctAnswerIndex": map[string]any{"type": "integer"},
				"explanation":        map[string]any{"type": "string"},
			},
			"required":         []string{"question", "options", "correctAnswerIndex", "explanation"},
			"propertyOrdering": []string{"question", "options", "correctAnswerIndex", "explanation"},
		},
	}
}
