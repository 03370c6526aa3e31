package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	terminalType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Terminal",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"place_id":    &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"occupied":    &graphql.Field{Type: graphql.Boolean},
			"status":      &graphql.Field{Type: graphql.String},
			"power_kw":    &graphql.Field{Type: graphql.Float},
			"price":       &graphql.Field{Type: graphql.Float},
			"standing":    &graphql.Field{Type: graphql.Boolean},
			"distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	bookingIntervalType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BookingInterval",
		Fields: graphql.Fields{
			"terminal_id": &graphql.Field{Type: graphql.String},
			"start":       &graphql.Field{Type: graphql.DateTime},
			"end":         &graphql.Field{Type: graphql.DateTime},
			"status":      &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"searchTerminals": &graphql.Field{
				Type:        graphql.NewList(terminalType),
				Description: "Terminals matching every supplied criterion",
				Args: graphql.FieldConfigArgument{
					"lat":      &graphql.ArgumentConfig{Type: graphql.Float},
					"lon":      &graphql.ArgumentConfig{Type: graphql.Float},
					"radiusKm": &graphql.ArgumentConfig{Type: graphql.Float},
					"occupied": &graphql.ArgumentConfig{Type: graphql.Boolean},
					"start":    &graphql.ArgumentConfig{Type: graphql.String},
					"end":      &graphql.ArgumentConfig{Type: graphql.String},
					"status":   &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					params, err := graphQLSearchParams(p.Args)
					if err != nil {
						return nil, err
					}
					if deps.MaxRadiusKm > 0 && params.RadiusKm != nil && *params.RadiusKm > deps.MaxRadiusKm {
						return nil, &domain.CriteriaError{Problems: []string{"radiusKm exceeds the allowed maximum"}}
					}
					criteria, err := domain.NewSearchCriteria(params)
					if err != nil {
						return nil, err
					}
					return deps.Search.Search(p.Context, criteria)
				},
			},
			"terminal": &graphql.Field{
				Type:        terminalType,
				Description: "Get a terminal by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Terminals.GetByID(p.Context, id)
				},
			},
			"terminalBookings": &graphql.Field{
				Type:        graphql.NewList(bookingIntervalType),
				Description: "Slots held on a terminal",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Terminals.Bookings(p.Context, id, nil)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func graphQLSearchParams(args map[string]interface{}) (domain.SearchParams, error) {
	var p domain.SearchParams
	if v, ok := args["lat"].(float64); ok {
		p.Lat = &v
	}
	if v, ok := args["lon"].(float64); ok {
		p.Lon = &v
	}
	if v, ok := args["radiusKm"].(float64); ok {
		p.RadiusKm = &v
	}
	if v, ok := args["occupied"].(bool); ok {
		p.Occupied = &v
	}
	for _, key := range []string{"start", "end"} {
		raw, ok := args[key].(string)
		if !ok || raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			return p, &domain.CriteriaError{Problems: []string{key + ": " + err.Error()}}
		}
		if key == "start" {
			p.Start = &t
		} else {
			p.End = &t
		}
	}
	if list, ok := args["status"].([]interface{}); ok {
		for _, s := range list {
			if str, ok := s.(string); ok {
				p.Statuses = append(p.Statuses, domain.TerminalStatus(str))
			}
		}
	}
	return p, nil
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
