package genai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"tunesmith/types"
)

var codeFence = regexp.MustCompile("```[a-zA-Z]*")

// BuildPrompt returns the instruction sent to the model
func BuildPrompt(count int, stylePrompt string) string {
	var b strings.Builder
	b.WriteString("You are a music expert, skilled at creating realistic-sounding song titles and artist names.\n\n")
	if s := strings.TrimSpace(stylePrompt); s != "" {
		fmt.Fprintf(&b, "Follow this instruction when choosing the titles and artists: %q\n\n", s)
	}
	fmt.Fprintf(&b, "Generate exactly %d unique song titles and artist names. ", count)
	b.WriteString("They must sound believable, as if they could exist in the modern music landscape.\n\n")
	b.WriteString(`Respond with a JSON object with a "songs" key holding an array of objects, each with a "title" and an "artist" field.` + "\n")
	b.WriteString(`Example: {"songs": [{"title": "Echoes in Rain", "artist": "Neon Drift"}]}`)
	return b.String()
}

// ParseSongs decodes the model's answer. Markdown code fences are stripped
// and both {"songs": [...]} and a bare array are accepted.
func ParseSongs(text string) ([]types.NameSuggestion, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty answer", ErrInvalidResponse)
	}

	if strings.HasPrefix(cleaned, "[") {
		var songs []types.NameSuggestion
		if err := json.Unmarshal([]byte(cleaned), &songs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return songs, nil
	}

	var wrapped struct {
		Songs []types.NameSuggestion `json:"songs"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if wrapped.Songs == nil {
		return nil, fmt.Errorf(`%w: missing "songs" key`, ErrInvalidResponse)
	}
	return wrapped.Songs, nil
}
