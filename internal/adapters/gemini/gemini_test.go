package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samirrijal/middleground/internal/adapters/gemini"
	"github.com/samirrijal/middleground/internal/core/domain"
)

// modelServer fakes the generateContent endpoint, answering every prompt
// with the given text.
func modelServer(t *testing.T, text string) *gemini.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/test-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return gemini.NewClient("test-key", "test-model", server.URL)
}

func summaries() []domain.VenueSummary {
	return []domain.VenueSummary{
		{Index: 0, Name: "Cafe Alpha", Rating: 4.5, Reviews: 300},
		{Index: 1, Name: "Cafe Beta", Rating: 4.0, Reviews: 50},
	}
}

func TestRanker_Rank(t *testing.T) {
	client := modelServer(t, `{"ranked_indices": [1, 0], "reasoning": {"1": "Closer for both", "0": "Busy"}}`)

	order, err := gemini.NewRanker(client).Rank(context.Background(), summaries(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Indices) != 2 || order.Indices[0] != 1 || order.Indices[1] != 0 {
		t.Errorf("unexpected indices %v", order.Indices)
	}
	if order.Reasoning[1] != "Closer for both" {
		t.Errorf("unexpected reasoning %v", order.Reasoning)
	}
}

func TestRanker_Rank_StripsMarkdownFences(t *testing.T) {
	client := modelServer(t, "```json\n{\"ranked_indices\": [0], \"reasoning\": {\"0\": \"Best rated\"}}\n```")

	order, err := gemini.NewRanker(client).Rank(context.Background(), summaries(), nil)
	if err != nil {
		t.Fatalf("fenced output should still parse: %v", err)
	}
	if len(order.Indices) != 1 || order.Indices[0] != 0 {
		t.Errorf("unexpected indices %v", order.Indices)
	}
}

func TestRanker_Rank_SkipsBadReasoningKeys(t *testing.T) {
	client := modelServer(t, `{"ranked_indices": [0, 1], "reasoning": {"0": "Good", "first": "not an index"}}`)

	order, err := gemini.NewRanker(client).Rank(context.Background(), summaries(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Reasoning) != 1 {
		t.Errorf("non-numeric reasoning keys should be dropped, got %v", order.Reasoning)
	}
}

func TestRanker_Rank_MalformedResponse(t *testing.T) {
	client := modelServer(t, "I think the first one is nice.")

	if _, err := gemini.NewRanker(client).Rank(context.Background(), summaries(), nil); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestRanker_Rank_EmptyIndices(t *testing.T) {
	client := modelServer(t, `{"ranked_indices": [], "reasoning": {}}`)

	if _, err := gemini.NewRanker(client).Rank(context.Background(), summaries(), nil); err == nil {
		t.Error("expected error for empty ranking")
	}
}

func TestRanker_Rank_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)
	client := gemini.NewClient("test-key", "test-model", server.URL)

	if _, err := gemini.NewRanker(client).Rank(context.Background(), summaries(), nil); err == nil {
		t.Error("expected error on HTTP failure")
	}
}

func TestInterpreter_InterpretPreference(t *testing.T) {
	client := modelServer(t, `{"place_type": "Park", "keywords": ["outdoor", "quiet"], "priority": "quiet"}`)

	pref, err := gemini.NewInterpreter(client).InterpretPreference(context.Background(), "somewhere green and calm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pref.PlaceType != "park" {
		t.Errorf("place type should be lowercased, got %q", pref.PlaceType)
	}
	if len(pref.Keywords) != 2 || pref.Priority != "quiet" {
		t.Errorf("unexpected preference %+v", pref)
	}
}

func TestInterpreter_InterpretPreference_MissingPlaceType(t *testing.T) {
	client := modelServer(t, `{"keywords": ["quiet"]}`)

	if _, err := gemini.NewInterpreter(client).InterpretPreference(context.Background(), "anything"); err == nil {
		t.Error("expected error when place_type is missing")
	}
}

func TestInterpreter_InterpretPreference_EmptyText(t *testing.T) {
	client := gemini.NewClient("test-key", "", "")

	if _, err := gemini.NewInterpreter(client).InterpretPreference(context.Background(), "   "); err == nil {
		t.Error("expected error for empty text")
	}
}
