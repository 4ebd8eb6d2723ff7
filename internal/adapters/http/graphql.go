package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/orbitcap/orbitcap/internal/pkg/capacity"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	gridPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GridPoint",
		Fields: graphql.Fields{
			"altitude_km":     &graphql.Field{Type: graphql.Float},
			"inclination_deg": &graphql.Field{Type: graphql.Float},
			"max_payload_kg":  &graphql.Field{Type: graphql.Float},
		},
	})

	estimateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CapacityEstimate",
		Fields: graphql.Fields{
			"estimated_max_payload_kg": &graphql.Field{Type: graphql.Float},
			"altitude_in_bounds":       &graphql.Field{Type: graphql.Boolean},
			"inclination_in_bounds":    &graphql.Field{Type: graphql.Boolean},
			"brackets":                 &graphql.Field{Type: graphql.NewList(gridPointType)},
		},
	})

	missionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mission",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"mission_number":  &graphql.Field{Type: graphql.Int},
			"mission_name":    &graphql.Field{Type: graphql.String},
			"outcome":         &graphql.Field{Type: graphql.String},
			"orbit_type":      &graphql.Field{Type: graphql.String},
			"launch_site":     &graphql.Field{Type: graphql.String},
			"payload_mass_kg": &graphql.Field{Type: graphql.Float},
			"altitude_km":     &graphql.Field{Type: graphql.Float},
			"inclination_deg": &graphql.Field{Type: graphql.Float},
			"customers":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	utilizationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Utilization",
		Fields: graphql.Fields{
			"mission_number":           &graphql.Field{Type: graphql.Int},
			"mission_name":             &graphql.Field{Type: graphql.String},
			"actual_payload_kg":        &graphql.Field{Type: graphql.Float},
			"estimated_max_payload_kg": &graphql.Field{Type: graphql.Float},
			"utilization_pct":          &graphql.Field{Type: graphql.Float},
			"altitude_in_bounds":       &graphql.Field{Type: graphql.Boolean},
			"inclination_in_bounds":    &graphql.Field{Type: graphql.Boolean},
			"note":                     &graphql.Field{Type: graphql.String},
		},
	})

	successRateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "YearlySuccessRate",
		Fields: graphql.Fields{
			"year":             &graphql.Field{Type: graphql.Int},
			"total_launches":   &graphql.Field{Type: graphql.Int},
			"successes":        &graphql.Field{Type: graphql.Int},
			"success_rate_pct": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"capacityEstimate": &graphql.Field{
				Type:        estimateType,
				Description: "Interpolate maximum payload capacity for a target orbit",
				Args: graphql.FieldConfigArgument{
					"altitude_km":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"inclination_deg": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					alt := p.Args["altitude_km"].(float64)
					inc := p.Args["inclination_deg"].(float64)
					return deps.Capacity.Estimate(capacity.Query{AltitudeKm: alt, InclinationDeg: inc})
				},
			},
			"capacityGrid": &graphql.Field{
				Type:        graphql.NewList(gridPointType),
				Description: "The full capacity reference grid",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Capacity.Grid(), nil
				},
			},
			"missions": &graphql.Field{
				Type:        graphql.NewList(missionType),
				Description: "All missions ordered by mission number",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Missions.List(p.Context)
				},
			},
			"mission": &graphql.Field{
				Type:        missionType,
				Description: "Get a mission by mission number",
				Args: graphql.FieldConfigArgument{
					"number": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Missions.GetByNumber(p.Context, p.Args["number"].(int))
				},
			},
			"missionUtilization": &graphql.Field{
				Type:        utilizationType,
				Description: "Actual vs estimated payload for one mission",
				Args: graphql.FieldConfigArgument{
					"number": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Missions.Utilization(p.Context, p.Args["number"].(int))
				},
			},
			"successRateByYear": &graphql.Field{
				Type:        graphql.NewList(successRateType),
				Description: "Launch success rate per calendar year",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Analytics.SuccessRateByYear(p.Context)
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
