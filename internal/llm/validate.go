package llm

import (
	"encoding/json"

	"github.com/abhisek/resumebot/internal/schema"
)

// validateResponse checks raw against s. A nil schema always passes.
func validateResponse(s *Schema, raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	if err := schema.Validate(s.Name, s.Definition, raw); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	return nil
}
