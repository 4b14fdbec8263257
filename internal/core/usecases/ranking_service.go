package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/ports"
)

const defaultEnrichWorkers = 5

// RankingService orders candidate venues by travel fairness and quality.
// The delegate provides the primary multi-criteria ordering; when it is
// unavailable or returns garbage, a deterministic local score takes over.
type RankingService struct {
	oracle    ports.TravelTimeOracle
	delegate  ports.RankingDelegate
	publisher ports.EventPublisher
	workers   int
}

// NewRankingService creates a new RankingService. publisher may be nil;
// workers bounds the concurrent travel-time lookups during enrichment, with
// values below 1 using the default of 5.
func NewRankingService(oracle ports.TravelTimeOracle, delegate ports.RankingDelegate, publisher ports.EventPublisher, workers int) *RankingService {
	if workers < 1 {
		workers = defaultEnrichWorkers
	}
	return &RankingService{oracle: oracle, delegate: delegate, publisher: publisher, workers: workers}
}

// Rank enriches venues with per-person travel data and returns them as a
// fresh RankedList with ranks 1..N. An empty input returns an empty list
// without touching any external collaborator.
func (s *RankingService) Rank(
	ctx context.Context,
	venues []domain.Venue,
	person1, person2 domain.GeoPoint,
	mode1, mode2 domain.TravelMode,
	preferences map[string]string,
) (domain.RankedList, error) {
	if len(venues) == 0 {
		return domain.RankedList{}, nil
	}
	if err := validatePair(person1, person2); err != nil {
		return nil, err
	}

	enriched := s.enrich(ctx, venues, person1, person2, mode1, mode2)

	ranked, err := s.rankWithDelegate(ctx, enriched, preferences)
	if err != nil {
		slog.Warn("ranking delegate failed, using fallback scoring", "error", err)
		if s.publisher != nil {
			if perr := s.publisher.PublishRankFallback(ctx, err.Error()); perr != nil {
				slog.Warn("publish rank fallback", "error", perr)
			}
		}
		ranked = fallbackRank(enriched)
	}

	return ranked, nil
}

// enrich attaches travel fairness and per-person duration text to each venue.
// Lookups run concurrently under a worker limit and are merged back by venue
// index so the result is deterministic given deterministic oracle responses.
// A failed measurement leaves that venue's fairness unknown; it never drops
// the venue or aborts the batch.
func (s *RankingService) enrich(
	ctx context.Context,
	venues []domain.Venue,
	person1, person2 domain.GeoPoint,
	mode1, mode2 domain.TravelMode,
) []domain.Venue {
	out := make([]domain.Venue, len(venues))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)

	for i := range venues {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			v := venues[idx]
			if s.oracle == nil {
				v.EnrichError = "travel-time oracle not configured"
				out[idx] = v
				return
			}

			m1, err1 := s.oracle.Measure(ctx, person1, v.Location, mode1)
			m2, err2 := s.oracle.Measure(ctx, person2, v.Location, mode2)
			if err1 != nil || err2 != nil {
				v.EnrichError = enrichFailureReason(err1, err2)
				out[idx] = v
				return
			}

			fairness := domain.FairnessRatio(m1.DurationSeconds, m2.DurationSeconds)
			v.TravelFairness = &fairness
			v.TimePerson1 = m1.DurationText
			v.TimePerson2 = m2.DurationText
			out[idx] = v
		}(i)
	}
	wg.Wait()

	return out
}

// rankWithDelegate asks the external reasoning service for an ordering and
// validates it. Out-of-range indices are dropped; venues the delegate omits
// are excluded from the final list by contract.
func (s *RankingService) rankWithDelegate(ctx context.Context, venues []domain.Venue, preferences map[string]string) (domain.RankedList, error) {
	if s.delegate == nil {
		return nil, fmt.Errorf("ranking delegate not configured")
	}

	summaries := make([]domain.VenueSummary, len(venues))
	for i, v := range venues {
		summaries[i] = summarize(i, v)
	}

	order, err := s.delegate.Rank(ctx, summaries, preferences)
	if err != nil {
		return nil, fmt.Errorf("delegate rank: %w", err)
	}
	if order == nil || len(order.Indices) == 0 {
		return nil, fmt.Errorf("delegate returned empty order")
	}

	ranked := make(domain.RankedList, 0, len(order.Indices))
	seen := make(map[int]bool)
	for _, idx := range order.Indices {
		if idx < 0 || idx >= len(venues) || seen[idx] {
			continue
		}
		seen[idx] = true

		v := venues[idx]
		v.Rank = len(ranked) + 1
		v.Reasoning = order.Reasoning[idx]
		if v.Reasoning == "" {
			v.Reasoning = "No reasoning provided"
		}
		ranked = append(ranked, v)
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("delegate order had no valid indices")
	}

	return ranked, nil
}

// fallbackRank scores venues locally and sorts descending. The formula is
// fixed so two runs over the same input always produce the same order:
//
//	rating*10 + min(reviews/10, 25) + fairness*25 + (open now ? 10 : 0)
//
// Ties keep input order (stable sort).
func fallbackRank(venues []domain.Venue) domain.RankedList {
	ranked := make(domain.RankedList, len(venues))
	copy(ranked, venues)

	for i := range ranked {
		score := fallbackScore(ranked[i])
		ranked[i].Score = &score
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Score > *ranked[j].Score
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Reasoning = fmt.Sprintf("Score: %.2f (fallback ranking)", *ranked[i].Score)
	}

	return ranked
}

func fallbackScore(v domain.Venue) float64 {
	var score float64

	if v.Rating != nil {
		score += *v.Rating * 10
	}

	reviews := float64(v.ReviewCount) / 10
	if reviews > 25 {
		reviews = 25
	}
	score += reviews

	if v.TravelFairness != nil {
		score += *v.TravelFairness * 25
	}

	if v.OpenNow != nil && *v.OpenNow {
		score += 10
	}

	return score
}

func summarize(index int, v domain.Venue) domain.VenueSummary {
	sum := domain.VenueSummary{
		Index:          index,
		Name:           v.Name,
		Reviews:        v.ReviewCount,
		Rating:         "unrated",
		OpenNow:        "unknown",
		PriceLevel:     "unknown",
		TravelFairness: "unknown",
		TimePerson1:    textOr(v.TimePerson1, "unknown"),
		TimePerson2:    textOr(v.TimePerson2, "unknown"),
	}
	if v.Rating != nil {
		sum.Rating = *v.Rating
	}
	if v.OpenNow != nil {
		sum.OpenNow = *v.OpenNow
	}
	if v.PriceLevel != nil {
		sum.PriceLevel = *v.PriceLevel
	}
	if v.TravelFairness != nil {
		sum.TravelFairness = *v.TravelFairness
	}
	return sum
}

func enrichFailureReason(err1, err2 error) string {
	switch {
	case err1 != nil && err2 != nil:
		return fmt.Sprintf("person1: %v; person2: %v", err1, err2)
	case err1 != nil:
		return fmt.Sprintf("person1: %v", err1)
	default:
		return fmt.Sprintf("person2: %v", err2)
	}
}

func textOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
