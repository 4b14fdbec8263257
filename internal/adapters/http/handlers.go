package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/usecases"
	"github.com/samirrijal/middleground/internal/pkg/metrics"
)

// ServiceStats holds row counts from the memory bank tables.
type ServiceStats struct {
	Users       int    `json:"users"`
	Searches    int    `json:"searches"`
	Preferences int    `json:"preferences"`
	LastSearch  string `json:"last_search,omitempty"`
}

// ServiceStatsHandler returns aggregate usage counts.
func ServiceStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats ServiceStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(DISTINCT user_id) FROM search_history),
				(SELECT count(*) FROM search_history),
				(SELECT count(*) FROM preferences),
				COALESCE((SELECT max(created_at)::text FROM search_history), '')
		`)
		if err := row.Scan(&stats.Users, &stats.Searches, &stats.Preferences, &stats.LastSearch); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// SearchMeetingHandler runs the full meeting-point pipeline: geocode both
// origins, compute the time-fair midpoint, find venues, rank them.
func SearchMeetingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecases.SearchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Location1 == "" || req.Location2 == "" {
			return errBadRequest(c, "location_1 and location_2 are required")
		}

		result, err := deps.Meetings.Search(c.Context(), req)
		if err != nil {
			metrics.SearchesTotal.WithLabelValues("error").Inc()
			return errInternal(c, err.Error())
		}

		metrics.SearchesTotal.WithLabelValues("ok").Inc()
		metrics.VenuesRanked.Observe(float64(len(result.Venues)))
		return c.JSON(result)
	}
}

// MidpointHandler computes a midpoint between two coordinates.
// GET /v1/midpoint?lat1=..&lng1=..&lat2=..&lng2=..&mode1=walking&mode2=driving&method=time_fair
func MidpointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, b, ok := parseCoordPair(c)
		if !ok {
			return errBadRequest(c, "lat1, lng1, lat2, lng2 are required")
		}

		mode1 := domain.ParseTravelMode(c.Query("mode1"))
		mode2 := domain.ParseTravelMode(c.Query("mode2"))

		var result *domain.MidpointResult
		var err error
		switch method := c.Query("method", "weighted"); method {
		case "simple":
			result, err = deps.Midpoints.Simple(a, b)
		case "weighted":
			result, err = deps.Midpoints.Weighted(a, b, mode1, mode2)
		case "time_fair":
			result, err = deps.Midpoints.TimeFair(c.Context(), a, b, mode1, mode2)
		default:
			return errBadRequest(c, "method must be simple, weighted, or time_fair")
		}
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		distances, err := deps.Midpoints.DistanceReport(a, b, result.Point)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(fiber.Map{
			"midpoint":  result,
			"distances": distances,
		})
	}
}

// NearbyVenuesHandler returns candidate venues around a point.
func NearbyVenuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lng") == "" {
			return errBadRequest(c, "lat and lng are required")
		}
		center := domain.GeoPoint{
			Lat: c.QueryFloat("lat", 0),
			Lng: c.QueryFloat("lng", 0),
		}
		if err := center.Validate(); err != nil {
			return errBadRequest(c, err.Error())
		}

		radius := c.QueryInt("radius", 2000)
		if radius < 500 || radius > 10000 {
			return errBadRequest(c, "radius must be between 500 and 10000 meters")
		}
		limit := c.QueryInt("limit", 10)
		if limit <= 0 || limit > 20 {
			limit = 10
		}

		venues, err := deps.Venues.Search(c.Context(), center, c.Query("type", "cafe"), radius, limit)
		if err != nil {
			return errUpstream(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(venues)
	}
}

// TravelTimeHandler measures one origin to destination trip.
// GET /v1/travel/time?lat1=..&lng1=..&lat2=..&lng2=..&mode=transit
func TravelTimeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, destination, ok := parseCoordPair(c)
		if !ok {
			return errBadRequest(c, "lat1, lng1, lat2, lng2 are required")
		}
		mode := domain.ParseTravelMode(c.Query("mode"))

		m, err := deps.Travel.Measure(c.Context(), origin, destination, mode)
		if err != nil {
			return errUpstream(c, err.Error())
		}
		return c.JSON(m)
	}
}

// TravelCompareHandler measures both people's travel to one destination and
// reports the fairness ratio between them.
// GET /v1/travel/compare?lat1=..&lng1=..&lat2=..&lng2=..&dlat=..&dlng=..&mode1=..&mode2=..
func TravelCompareHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin1, origin2, ok := parseCoordPair(c)
		if !ok {
			return errBadRequest(c, "lat1, lng1, lat2, lng2 are required")
		}
		if c.Query("dlat") == "" || c.Query("dlng") == "" {
			return errBadRequest(c, "dlat and dlng (destination) are required")
		}
		destination := domain.GeoPoint{
			Lat: c.QueryFloat("dlat", 0),
			Lng: c.QueryFloat("dlng", 0),
		}

		mode1 := domain.ParseTravelMode(c.Query("mode1"))
		mode2 := domain.ParseTravelMode(c.Query("mode2"))

		comparison, err := deps.Travel.Compare(c.Context(), origin1, origin2, destination, mode1, mode2)
		if err != nil {
			return errUpstream(c, err.Error())
		}
		return c.JSON(comparison)
	}
}

// HistoryHandler returns a user's recent searches, newest first.
func HistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if userID == "" {
			return errBadRequest(c, "user id is required")
		}

		records, err := deps.Preferences.History(c.Context(), userID, c.QueryInt("limit", 10))
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Apply offset/limit pagination on the capped window
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 10)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 10 {
			limit = 10
		}

		total := len(records)
		if offset >= total {
			records = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			records = records[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: records, Pagination: pg})
	}
}

// ListPreferencesHandler returns every stored preference for a user.
func ListPreferencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if userID == "" {
			return errBadRequest(c, "user id is required")
		}
		prefs, err := deps.Preferences.List(c.Context(), userID)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(prefs)
	}
}

// GetPreferenceHandler returns a single preference by key.
func GetPreferenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		key := c.Params("key")
		if userID == "" || key == "" {
			return errBadRequest(c, "user id and preference key are required")
		}
		pref, err := deps.Preferences.Get(c.Context(), userID, key)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if pref == nil {
			return errNotFound(c, "preference not found")
		}
		return c.JSON(pref)
	}
}

// SetPreferenceHandler stores one preference for a user.
// PUT /v1/users/:id/preferences/:key with body {"value": "..."}
func SetPreferenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		key := c.Params("key")
		if userID == "" || key == "" {
			return errBadRequest(c, "user id and preference key are required")
		}

		var body struct {
			Value string `json:"value"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Preferences.Set(c.Context(), userID, key, body.Value); err != nil {
			return errInternal(c, err.Error())
		}
		return c.Status(204).Send(nil)
	}
}

// MemoryHandler returns everything learned about a user: total searches,
// preferences, and frequent locations.
func MemoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if userID == "" {
			return errBadRequest(c, "user id is required")
		}
		summary, err := deps.Preferences.Summary(c.Context(), userID)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(summary)
	}
}

// parseCoordPair reads lat1/lng1/lat2/lng2 query params. ok is false when
// any of the four is missing or not a number.
func parseCoordPair(c *fiber.Ctx) (a, b domain.GeoPoint, ok bool) {
	for _, name := range []string{"lat1", "lng1", "lat2", "lng2"} {
		raw := c.Query(name)
		if raw == "" {
			return a, b, false
		}
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return a, b, false
		}
	}
	a = domain.GeoPoint{Lat: c.QueryFloat("lat1", 0), Lng: c.QueryFloat("lng1", 0)}
	b = domain.GeoPoint{Lat: c.QueryFloat("lat2", 0), Lng: c.QueryFloat("lng2", 0)}
	return a, b, true
}
