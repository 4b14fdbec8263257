package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/middleground/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	midpointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Midpoint",
		Fields: graphql.Fields{
			"point":          &graphql.Field{Type: geoPointType},
			"method":         &graphql.Field{Type: graphql.String},
			"weight1":        &graphql.Field{Type: graphql.Float},
			"weight2":        &graphql.Field{Type: graphql.Float},
			"adjustment_km":  &graphql.Field{Type: graphql.Float},
			"fairness_ratio": &graphql.Field{Type: graphql.Float},
			"iterations":     &graphql.Field{Type: graphql.Int},
		},
	})

	venueType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Venue",
		Fields: graphql.Fields{
			"place_id":        &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"address":         &graphql.Field{Type: graphql.String},
			"location":        &graphql.Field{Type: geoPointType},
			"rating":          &graphql.Field{Type: graphql.Float},
			"review_count":    &graphql.Field{Type: graphql.Int},
			"travel_fairness": &graphql.Field{Type: graphql.Float},
			"rank":            &graphql.Field{Type: graphql.Int},
			"reasoning":       &graphql.Field{Type: graphql.String},
		},
	})

	searchRecordType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchRecord",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"user_id":    &graphql.Field{Type: graphql.String},
			"location_1": &graphql.Field{Type: graphql.String},
			"location_2": &graphql.Field{Type: graphql.String},
			"place_type": &graphql.Field{Type: graphql.String},
			"midpoint":   &graphql.Field{Type: geoPointType},
			"top_venue":  &graphql.Field{Type: graphql.String},
		},
	})

	preferenceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Preference",
		Fields: graphql.Fields{
			"user_id": &graphql.Field{Type: graphql.String},
			"key":     &graphql.Field{Type: graphql.String},
			"value":   &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"midpoint": &graphql.Field{
				Type:        midpointType,
				Description: "Compute a midpoint between two coordinates",
				Args: graphql.FieldConfigArgument{
					"lat1":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng1":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lat2":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng2":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"mode1":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "transit"},
					"mode2":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "transit"},
					"method": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "weighted"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					a := domain.GeoPoint{Lat: p.Args["lat1"].(float64), Lng: p.Args["lng1"].(float64)}
					b := domain.GeoPoint{Lat: p.Args["lat2"].(float64), Lng: p.Args["lng2"].(float64)}
					mode1 := domain.ParseTravelMode(p.Args["mode1"].(string))
					mode2 := domain.ParseTravelMode(p.Args["mode2"].(string))

					switch p.Args["method"].(string) {
					case "simple":
						return deps.Midpoints.Simple(a, b)
					case "time_fair":
						return deps.Midpoints.TimeFair(p.Context, a, b, mode1, mode2)
					default:
						return deps.Midpoints.Weighted(a, b, mode1, mode2)
					}
				},
			},
			"venuesNearby": &graphql.Field{
				Type:        graphql.NewList(venueType),
				Description: "Find candidate venues around a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"type":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "cafe"},
					"radius": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 2000},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					center := domain.GeoPoint{
						Lat: p.Args["lat"].(float64),
						Lng: p.Args["lng"].(float64),
					}
					return deps.Venues.Search(p.Context, center,
						p.Args["type"].(string), p.Args["radius"].(int), p.Args["limit"].(int))
				},
			},
			"searchHistory": &graphql.Field{
				Type:        graphql.NewList(searchRecordType),
				Description: "A user's recent searches, newest first",
				Args: graphql.FieldConfigArgument{
					"user_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Preferences.History(p.Context,
						p.Args["user_id"].(string), p.Args["limit"].(int))
				},
			},
			"preferences": &graphql.Field{
				Type:        graphql.NewList(preferenceType),
				Description: "A user's stored preferences",
				Args: graphql.FieldConfigArgument{
					"user_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Preferences.List(p.Context, p.Args["user_id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
