package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tunesmith/types"
)

// Generator is the external generative text service. It returns an ordered
// list of suggestions, ideally exactly count long.
type Generator interface {
	Generate(ctx context.Context, count int, stylePrompt string) ([]types.NameSuggestion, error)
}

// GeneratorFunc adapts a plain function to the Generator interface
type GeneratorFunc func(ctx context.Context, count int, stylePrompt string) ([]types.NameSuggestion, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, count int, stylePrompt string) ([]types.NameSuggestion, error) {
	return f(ctx, count, stylePrompt)
}

// BatchRequest asks for one suggestion per selected file
type BatchRequest struct {
	Count       int    `json:"count"`
	StylePrompt string `json:"stylePrompt,omitempty"`
}

// NewBatchRequest builds a request, rejecting a non-positive count
func NewBatchRequest(count int, stylePrompt string) (BatchRequest, error) {
	if count <= 0 {
		return BatchRequest{}, &ValidationError{Message: fmt.Sprintf("suggestion count must be positive, got %d", count)}
	}
	return BatchRequest{Count: count, StylePrompt: strings.TrimSpace(stylePrompt)}, nil
}

// SuggestionClient interface defines the fixed contract around the generator
type SuggestionClient interface {
	Generate(ctx context.Context, req BatchRequest) ([]types.NameSuggestion, error)
}

// suggestionClient implements the SuggestionClient interface
type suggestionClient struct {
	generator Generator
}

// NewSuggestionClient wraps a generator with cardinality and error classification
func NewSuggestionClient(generator Generator) SuggestionClient {
	return &suggestionClient{generator: generator}
}

// Generate returns exactly req.Count suggestions or a *ServiceError
func (c *suggestionClient) Generate(ctx context.Context, req BatchRequest) ([]types.NameSuggestion, error) {
	if req.Count <= 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("suggestion count must be positive, got %d", req.Count)}
	}

	suggestions, err := c.generator.Generate(ctx, req.Count, req.StylePrompt)
	if err != nil {
		return nil, classifyGeneratorError(err)
	}

	if len(suggestions) != req.Count {
		return nil, &ServiceError{
			Message: fmt.Sprintf("AI returned %d suggestions for %d files", len(suggestions), req.Count),
		}
	}

	for i, s := range suggestions {
		if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Artist) == "" {
			return nil, &ServiceError{
				Message: fmt.Sprintf("AI returned an incomplete suggestion at position %d", i+1),
			}
		}
	}

	return suggestions, nil
}

// classifyGeneratorError maps a generator failure to a ServiceError,
// separating rate limiting from everything else
func classifyGeneratorError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	var limited interface{ RateLimited() bool }
	rateLimited := errors.As(err, &limited) && limited.RateLimited()
	if !rateLimited {
		msg := err.Error()
		rateLimited = strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
	}

	if rateLimited {
		return &ServiceError{
			Message:     "AI service is busy. Please try again in a moment.",
			RateLimited: true,
			Err:         err,
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Message: fmt.Sprintf("suggestion request aborted: %v", err), Err: err}
	}

	return &ServiceError{
		Message: fmt.Sprintf("An unexpected error occurred while contacting the AI service: %v", err),
		Err:     err,
	}
}
