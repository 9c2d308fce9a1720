package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/common"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *airquality.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/stations", func(c *fiber.Ctx) error {
		snap := service.Snapshot()

		views := make([]stationView, len(snap.Stations))
		for i, s := range snap.Stations {
			views[i] = stationView{Station: s, Tier: airquality.Classify(s.AQI)}
		}

		return c.JSON(fiber.Map{
			"stations":  views,
			"count":     len(views),
			"updatedAt": snap.UpdatedAt,
		})
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"samples":  service.History(),
			"capacity": service.HistoryCapacity(),
		})
	})

	v1.Get("/alerts", func(c *fiber.Ctx) error {
		stations := service.Stations()
		alerts := airquality.PartitionAlerts(stations)

		return c.JSON(fiber.Map{
			"hazardous":     alerts.Hazardous,
			"veryUnhealthy": alerts.VeryUnhealthy,
			"unhealthy":     alerts.Unhealthy,
			"active":        !alerts.Empty(),
			"advice":        airquality.WorstAdvice(stations),
		})
	})

	v1.Get("/tiers", func(c *fiber.Ctx) error {
		return c.JSON(airquality.Tiers())
	})

	v1.Get("/classify", func(c *fiber.Ctx) error {
		q, err := parseClassifyQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"aqi":  *q.AQI,
			"tier": airquality.Classify(*q.AQI),
		})
	})

	v1.Get("/recommendation", func(c *fiber.Ctx) error {
		q, err := parseRecommendationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(airquality.Recommend(*q.AQI, q.Conditions))
	})

	v1.Get("/summary", func(c *fiber.Ctx) error {
		snap := service.Snapshot()

		return c.JSON(fiber.Map{
			"summary":   airquality.Summarize(snap.Stations),
			"trend":     airquality.AnalyzeTrend(snap.History),
			"weather":   snap.Weather,
			"updatedAt": snap.UpdatedAt,
			"cycles":    snap.Cycles,
		})
	})

	v1.Get("/heatmap", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"points": service.HeatPoints(),
		})
	})

	v1.Post("/poll", func(c *fiber.Ctx) error {
		res, err := service.Poll(c.UserContext())
		if err != nil {
			if errors.Is(err, airquality.ErrServiceClosed) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "service is shutting down")
			}
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}

		return c.JSON(res)
	})
}

// stationView is a station annotated with its severity tier.
type stationView struct {
	airquality.Station
	Tier airquality.Tier `json:"tier"`
}

// classifyQuery holds query parameters for the classify endpoint.
type classifyQuery struct {
	AQI *float64 `validate:"required,finite,gte=0"`
}

func init() {
	common.RegisterFinite(validate)
}

func parseClassifyQuery(c *fiber.Ctx) (classifyQuery, error) {
	var q classifyQuery

	aqi, err := parseAQI(c)
	if err != nil {
		return q, err
	}
	q.AQI = aqi

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// recommendationQuery holds query parameters for the recommendation endpoint.
// Conditions arrive comma-separated, e.g. conditions=asthma,child.
type recommendationQuery struct {
	AQI        *float64 `validate:"required,finite,gte=0"`
	Conditions []string `validate:"max=20,dive,max=100"`
}

func parseRecommendationQuery(c *fiber.Ctx) (recommendationQuery, error) {
	var q recommendationQuery

	aqi, err := parseAQI(c)
	if err != nil {
		return q, err
	}
	q.AQI = aqi

	for _, cond := range strings.Split(c.Query("conditions"), ",") {
		if cond = strings.TrimSpace(cond); cond != "" {
			q.Conditions = append(q.Conditions, cond)
		}
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// parseAQI reads the aqi query parameter; absent yields nil.
func parseAQI(c *fiber.Ctx) (*float64, error) {
	raw := c.Query("aqi")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("aqi must be a number")
	}
	return &v, nil
}
