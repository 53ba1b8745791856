package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tunesmith/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type limitedErr struct{}

func (limitedErr) Error() string     { return "slow down" }
func (limitedErr) RateLimited() bool { return true }

func TestNewBatchRequest(t *testing.T) {
	req, err := NewBatchRequest(3, "  lo-fi  ")
	require.NoError(t, err)
	assert.Equal(t, BatchRequest{Count: 3, StylePrompt: "lo-fi"}, req)

	for _, count := range []int{0, -1} {
		_, err := NewBatchRequest(count, "")
		var validationErr *ValidationError
		assert.True(t, errors.As(err, &validationErr), "count %d", count)
	}
}

func TestSuggestionClientExactCount(t *testing.T) {
	gen := countingGenerator()
	client := NewSuggestionClient(gen)

	songs, err := client.Generate(context.Background(), BatchRequest{Count: 4, StylePrompt: "jazz"})
	require.NoError(t, err)
	assert.Len(t, songs, 4)
	assert.Equal(t, []int{4}, gen.counts)
	assert.Equal(t, []string{"jazz"}, gen.prompts)
}

func TestSuggestionClientRejectsWrongCardinality(t *testing.T) {
	two := []types.NameSuggestion{{Title: "X", Artist: "Y"}, {Title: "Q", Artist: "R"}}

	for _, count := range []int{1, 3} {
		t.Run(fmt.Sprintf("asked for %d", count), func(t *testing.T) {
			_, err := NewSuggestionClient(fixedGenerator(two...)).Generate(context.Background(), BatchRequest{Count: count})

			var se *ServiceError
			require.True(t, errors.As(err, &se))
			assert.False(t, se.RateLimited)
			assert.Contains(t, se.Message, "2 suggestions")
		})
	}
}

func TestSuggestionClientRejectsIncompleteSuggestion(t *testing.T) {
	gen := fixedGenerator(types.NameSuggestion{Title: "X", Artist: "Y"}, types.NameSuggestion{Title: " ", Artist: "R"})

	_, err := NewSuggestionClient(gen).Generate(context.Background(), BatchRequest{Count: 2})
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Message, "position 2")
}

func TestSuggestionClientZeroCountSkipsService(t *testing.T) {
	gen := countingGenerator()
	_, err := NewSuggestionClient(gen).Generate(context.Background(), BatchRequest{Count: 0})

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, 0, gen.Calls())
}

func TestSuggestionClientClassifiesErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		rateLimited bool
	}{
		{"typed rate limit", fmt.Errorf("wrapped: %w", limitedErr{}), true},
		{"http 429 in message", errors.New("request failed with status 429"), true},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED: quota"), true},
		{"generic", errors.New("connection refused"), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSuggestionClient(failingGenerator(tt.err)).Generate(context.Background(), BatchRequest{Count: 1})

			var se *ServiceError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.rateLimited, se.RateLimited)
			assert.Equal(t, tt.rateLimited, IsRateLimited(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
