// Package workflows runs long meeting searches as durable Temporal
// executions. Each pipeline stage is an activity with its own retry policy,
// so a flaky geocoder or routing service retries without redoing the rest.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/usecases"
)

// SearchInput is the input for the meeting search workflow.
type SearchInput struct {
	UserID     string
	Location1  string
	Location2  string
	Mode1      string
	Mode2      string
	PlaceQuery string
	RadiusM    int
	MaxResults int
}

// SearchOutput is the workflow result: the midpoint and the ranked venues.
type SearchOutput struct {
	Origin1  domain.GeocodedLocation
	Origin2  domain.GeocodedLocation
	Midpoint domain.MidpointResult
	Venues   domain.RankedList
}

// MeetingSearchWorkflow runs the search pipeline stage by stage: geocode both
// origins, compute the time-fair midpoint, find venues, rank them, record the
// search. History recording is best-effort and never fails the workflow.
func MeetingSearchWorkflow(ctx workflow.Context, input SearchInput) (*SearchOutput, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting meeting search workflow", "user", input.UserID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 60 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: resolve both origins. These are independent external calls.
	var origin1, origin2 domain.GeocodedLocation
	if err := workflow.ExecuteActivity(ctx, "Geocode", input.Location1).Get(ctx, &origin1); err != nil {
		return nil, err
	}
	if err := workflow.ExecuteActivity(ctx, "Geocode", input.Location2).Get(ctx, &origin2); err != nil {
		return nil, err
	}

	// Step 2: time-fair midpoint between the resolved points.
	var midpoint domain.MidpointResult
	err := workflow.ExecuteActivity(ctx, "ComputeMidpoint",
		origin1.Point, origin2.Point, input.Mode1, input.Mode2).Get(ctx, &midpoint)
	if err != nil {
		return nil, err
	}

	// Step 3: candidate venues around the midpoint.
	var venues []domain.Venue
	err = workflow.ExecuteActivity(ctx, "FindVenues",
		midpoint.Point, input.PlaceQuery, input.RadiusM, input.MaxResults).Get(ctx, &venues)
	if err != nil {
		return nil, err
	}

	// Step 4: enrich and rank. The activity falls back to deterministic
	// scoring internally, so a failure here means the oracle itself is down.
	var ranked domain.RankedList
	err = workflow.ExecuteActivity(ctx, "RankVenues",
		venues, origin1.Point, origin2.Point, input.Mode1, input.Mode2).Get(ctx, &ranked)
	if err != nil {
		return nil, err
	}

	// Step 5: record the search. Best-effort.
	record := historyRecord(input, midpoint, ranked)
	if err := workflow.ExecuteActivity(ctx, "RecordHistory", record).Get(ctx, nil); err != nil {
		logger.Warn("history recording failed", "error", err)
	}

	logger.Info("Meeting search workflow complete", "venues", len(ranked))
	return &SearchOutput{
		Origin1:  origin1,
		Origin2:  origin2,
		Midpoint: midpoint,
		Venues:   ranked,
	}, nil
}

func historyRecord(input SearchInput, midpoint domain.MidpointResult, ranked domain.RankedList) *domain.SearchRecord {
	record := &domain.SearchRecord{
		UserID:    input.UserID,
		Location1: input.Location1,
		Location2: input.Location2,
		Mode1:     domain.ParseTravelMode(input.Mode1),
		Mode2:     domain.ParseTravelMode(input.Mode2),
		PlaceType: usecases.KeywordPreference(input.PlaceQuery).PlaceType,
		Midpoint:  midpoint.Point,
	}
	if len(ranked) > 0 {
		record.TopVenue = ranked[0].Name
	}
	return record
}
