package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/middleground/internal/adapters/postgres"
	"github.com/samirrijal/middleground/internal/adapters/valkey"
	"github.com/samirrijal/middleground/internal/core/ports"
	"github.com/samirrijal/middleground/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Meetings    *usecases.MeetingService
	Midpoints   *usecases.MidpointService
	Travel      *usecases.TravelService
	Preferences *usecases.PreferenceService
	Venues      ports.VenueSearchService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
}
