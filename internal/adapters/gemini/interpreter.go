package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/ports"
)

// Interpreter maps free-text place requests ("somewhere quiet for coffee")
// to a structured preference.
type Interpreter struct {
	client *Client
}

var _ ports.InterpretationService = (*Interpreter)(nil)

func NewInterpreter(client *Client) *Interpreter {
	return &Interpreter{client: client}
}

type interpretPayload struct {
	PlaceType string   `json:"place_type"`
	Keywords  []string `json:"keywords"`
	Priority  string   `json:"priority"`
}

func (i *Interpreter) InterpretPreference(ctx context.Context, text string) (*domain.PlacePreference, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty preference text")
	}

	resp, err := i.client.generate(ctx, buildInterpretPrompt(text), 0.1)
	if err != nil {
		return nil, err
	}

	var payload interpretPayload
	if err := json.Unmarshal([]byte(stripFences(resp)), &payload); err != nil {
		return nil, fmt.Errorf("parse interpretation response: %w", err)
	}
	if payload.PlaceType == "" {
		return nil, fmt.Errorf("interpretation response missing place_type")
	}

	return &domain.PlacePreference{
		PlaceType: strings.ToLower(payload.PlaceType),
		Keywords:  payload.Keywords,
		Priority:  payload.Priority,
	}, nil
}

func buildInterpretPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Classify this meeting place request into a venue category.\n")
	b.WriteString("Allowed place_type values: cafe, restaurant, park, bar, library, mall, beach.\n")
	b.WriteString("Request: ")
	b.WriteString(text)
	b.WriteString("\n\nRespond with ONLY a JSON object, no markdown, of the form:\n")
	b.WriteString(`{"place_type": "cafe", "keywords": ["quiet"], "priority": "rating"}`)
	return b.String()
}
