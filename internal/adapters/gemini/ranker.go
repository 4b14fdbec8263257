package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/ports"
	"github.com/samirrijal/middleground/internal/pkg/metrics"
)

// Ranker asks the model to order venues by suitability for a meeting
// between two people.
type Ranker struct {
	client *Client
}

var _ ports.RankingDelegate = (*Ranker)(nil)

func NewRanker(client *Client) *Ranker {
	return &Ranker{client: client}
}

// rankPayload is the JSON contract the prompt instructs the model to emit.
// Reasoning keys are stringified venue indices.
type rankPayload struct {
	RankedIndices []int             `json:"ranked_indices"`
	Reasoning     map[string]string `json:"reasoning"`
}

// Rank returns the model's preferred ordering over the given venue
// summaries. Any transport or parse failure is returned to the caller,
// which is expected to fall back to deterministic scoring.
func (r *Ranker) Rank(ctx context.Context, summaries []domain.VenueSummary, preferences map[string]string) (*domain.RankOrder, error) {
	text, err := r.client.generate(ctx, buildRankPrompt(summaries, preferences), 0.2)
	if err != nil {
		metrics.DelegateFailures.Inc()
		return nil, err
	}

	var payload rankPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &payload); err != nil {
		metrics.DelegateFailures.Inc()
		return nil, fmt.Errorf("parse ranking response: %w", err)
	}
	if len(payload.RankedIndices) == 0 {
		metrics.DelegateFailures.Inc()
		return nil, fmt.Errorf("ranking response contained no indices")
	}

	order := &domain.RankOrder{
		Indices:   payload.RankedIndices,
		Reasoning: make(map[int]string, len(payload.Reasoning)),
	}
	for key, why := range payload.Reasoning {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		order.Reasoning[idx] = why
	}
	return order, nil
}

func buildRankPrompt(summaries []domain.VenueSummary, preferences map[string]string) string {
	venues, _ := json.MarshalIndent(summaries, "", "  ")

	var b strings.Builder
	b.WriteString("You are ranking meeting venues for two people meeting at a fair midpoint.\n")
	b.WriteString("Consider rating, review count, travel fairness between the two people, and whether the venue is open.\n")
	if len(preferences) > 0 {
		prefs, _ := json.Marshal(preferences)
		b.WriteString("User preferences: ")
		b.Write(prefs)
		b.WriteString("\n")
	}
	b.WriteString("\nVenues (indexed from 0):\n")
	b.Write(venues)
	b.WriteString("\n\nRespond with ONLY a JSON object, no markdown, of the form:\n")
	b.WriteString(`{"ranked_indices": [best_index, ...], "reasoning": {"<index>": "one sentence"}}`)
	b.WriteString("\nInclude every index exactly once in ranked_indices.")
	return b.String()
}
