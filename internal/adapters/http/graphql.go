package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	optionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CandidateOption",
		Fields: graphql.Fields{
			"warehouseId":            &graphql.Field{Type: graphql.String},
			"transportMode":          &graphql.Field{Type: graphql.String},
			"distanceKm":             &graphql.Field{Type: graphql.Float},
			"estimatedCost":          &graphql.Field{Type: graphql.Float},
			"estimatedDeliveryHours": &graphql.Field{Type: graphql.Float},
			"score":                  &graphql.Field{Type: graphql.Float},
		},
	})

	recommendationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Recommendation",
		Fields: graphql.Fields{
			"recommendedOption": &graphql.Field{Type: optionType},
			"alternatives":      &graphql.Field{Type: graphql.NewList(optionType)},
		},
	})

	transportModeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TransportMode",
		Fields: graphql.Fields{
			"code":            &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"minDistanceKm":   &graphql.Field{Type: graphql.Float},
			"maxDistanceKm":   &graphql.Field{Type: graphql.Float, Description: "null for the unbounded tier"},
			"ratePerKmPerKg":  &graphql.Field{Type: graphql.Float},
			"averageSpeedKmh": &graphql.Field{Type: graphql.Float},
		},
	})

	metricsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ShippingMetrics",
		Fields: graphql.Fields{
			"totalRequests":     &graphql.Field{Type: graphql.Int},
			"avgLatencyMs":      &graphql.Field{Type: graphql.Int},
			"cacheHits":         &graphql.Field{Type: graphql.Int},
			"mostUsedTransport": &graphql.Field{Type: graphql.String},
			"failedRequests":    &graphql.Field{Type: graphql.Int},
		},
	})

	nearestType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearestWarehouse",
		Fields: graphql.Fields{
			"warehouseId":       &graphql.Field{Type: graphql.String},
			"warehouseLocation": &graphql.Field{Type: coordinateType},
		},
	})

	distanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Distance",
		Fields: graphql.Fields{
			"distanceKm":      &graphql.Field{Type: graphql.Float},
			"durationMinutes": &graphql.Field{Type: graphql.Int},
			"strategy":        &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"recommendation": &graphql.Field{
				Type:        recommendationType,
				Description: "Rank warehouse and transport options for an order",
				Args: graphql.FieldConfigArgument{
					"orderId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"priority": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.PriorityBalanced)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					priority, err := domain.ParsePriority(p.Args["priority"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Recommendations.Recommend(p.Context, p.Args["orderId"].(string), priority)
				},
			},
			"distance": &graphql.Field{
				Type:        distanceType,
				Description: "Distance between two coordinates",
				Args: graphql.FieldConfigArgument{
					"sourceLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"sourceLng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"destLat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"destLng":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"mode":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.DistanceModeHaversine)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					mode, err := domain.ParseDistanceMode(p.Args["mode"].(string))
					if err != nil {
						return nil, err
					}
					src := domain.Coordinate{Lat: p.Args["sourceLat"].(float64), Lng: p.Args["sourceLng"].(float64)}
					dst := domain.Coordinate{Lat: p.Args["destLat"].(float64), Lng: p.Args["destLng"].(float64)}
					return deps.Distance.Distance(p.Context, src, dst, mode)
				},
			},
			"nearestWarehouse": &graphql.Field{
				Type:        nearestType,
				Description: "Nearest active warehouse to a seller",
				Args: graphql.FieldConfigArgument{
					"sellerId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Warehouses.FindNearest(p.Context, p.Args["sellerId"].(string), p.Args["productId"].(string))
				},
			},
			"transportModes": &graphql.Field{
				Type:        graphql.NewList(transportModeType),
				Description: "Transport mode catalog",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return transportModeViews(), nil
				},
			},
			"shippingMetrics": &graphql.Field{
				Type:        metricsType,
				Description: "In-process shipping request counters",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Recorder == nil {
						return nil, nil
					}
					return deps.Recorder.Snapshot(), nil
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
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
