// Package llm sends single-turn prompts to hosted language models and
// returns JSON that has already been checked against the caller's schema.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Provider answers one prompt with structured output.
type Provider interface {
	// Generate sends req to the model. When req.Schema is set the returned
	// Content conforms to it.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

// Request is one prompt. Instructions go out in the provider's system slot.
type Request struct {
	Instructions string
	Prompt       string

	// Schema asks for JSON in this shape through the provider's native
	// structured output mode.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is kebab-case, e.g. "resume-skills", and keys the compiled
	// schema cache.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a model answer that passed validation.
type Response struct {
	Content json.RawMessage
	Usage   Usage
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// reply is what an adapter pulled out of its SDK response.
type reply struct {
	content   json.RawMessage
	truncated bool
	usage     Usage
}

var errEmptyReply = errors.New("model returned no text")

// finish runs the checks every adapter shares on a raw reply.
func finish(req Request, r reply) (*Response, error) {
	if r.truncated {
		return nil, &ErrInvalidResponse{Content: r.content, Truncated: true}
	}
	if len(r.content) == 0 {
		return nil, &ErrInvalidResponse{Err: errEmptyReply}
	}
	if err := validateResponse(req.Schema, r.content); err != nil {
		return nil, err
	}
	return &Response{Content: r.content, Usage: r.usage}, nil
}
