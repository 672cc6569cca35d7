package analysis

// Response body schemas for the wire contract. Score bounds are enforced
// here as well as in the workflow.

var scanSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"skills": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []any{"skills"},
}

var testSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"test": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []any{"test"},
}

var evaluationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"score":    map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		"category": map[string]any{"type": "string"},
	},
	"required": []any{"score", "category"},
}

// errorBody is the failure shape: {"error": "..."}.
type errorBody struct {
	Error string `json:"error"`
}
