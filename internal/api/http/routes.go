// Package httpapi exposes the administrative trigger API: creating locations
// and races and launching the weather pipeline over batches of them. It is
// the calling side of the pipeline, not a user-facing surface.
package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/raceday/raceweather/internal/store"
	"github.com/raceday/raceweather/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, st weather.Store) {
	v1 := app.Group("/api/v1")
	admin := v1.Group("/admin")

	admin.Post("/locations", func(c *fiber.Ctx) error {
		var req createLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := &weather.Location{City: req.City, State: req.State, Country: req.Country}
		if err := st.SaveLocation(c.Context(), loc); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save location")
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	})

	admin.Get("/locations", func(c *fiber.Ctx) error {
		locs, err := st.ListLocations(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list locations")
		}
		return c.JSON(locs)
	})

	// Batch geocoding. One location's failure never aborts the rest.
	admin.Post("/locations/resolve", func(c *fiber.Ctx) error {
		ids, err := parseIDBatch(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report := newBatchReport()
		for _, id := range ids {
			loc, err := st.GetLocation(c.Context(), id)
			if err != nil {
				report.fail(id.String(), lookupErrorMessage(err, "location"))
				continue
			}
			if _, _, err := service.ResolveLocation(c.Context(), loc); err != nil {
				report.fail(loc.City, err.Error())
				continue
			}
			report.ok()
		}
		return c.JSON(report)
	})

	admin.Post("/races", func(c *fiber.Ctx) error {
		var req createRaceRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be RFC3339")
		}
		locationID, err := uuid.Parse(req.LocationID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "locationId must be a uuid")
		}
		if _, err := st.GetLocation(c.Context(), locationID); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, lookupErrorMessage(err, "location"))
		}

		race := &weather.Race{
			Name:       req.Name,
			Slug:       slug.Make(req.Name),
			Length:     req.Length,
			Date:       date,
			LocationID: locationID,
		}
		if err := st.SaveRace(c.Context(), race); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save race")
		}
		return c.Status(fiber.StatusCreated).JSON(race)
	})

	admin.Get("/races", func(c *fiber.Ctx) error {
		races, err := st.ListRaces(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list races")
		}
		return c.JSON(races)
	})

	// Batch multi-year history ingestion. Partial failure inside one race's
	// window is already carried in its summary; a race-level failure is
	// recorded and the batch moves on.
	admin.Post("/races/backfill", func(c *fiber.Ctx) error {
		ids, err := parseIDBatch(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report := newBatchReport()
		summaries := make(map[string]weather.BackfillSummary)
		for _, id := range ids {
			race, err := st.GetRace(c.Context(), id)
			if err != nil {
				report.fail(id.String(), lookupErrorMessage(err, "race"))
				continue
			}
			summary, err := service.BackfillHistory(c.Context(), race)
			if err != nil {
				report.fail(race.Name, err.Error())
				continue
			}
			summaries[race.Slug] = summary
			report.ok()
		}
		return c.JSON(fiber.Map{
			"report":    report,
			"summaries": summaries,
		})
	})

	// Batch forecast generation, live or synthesized per race.
	admin.Post("/races/forecast", func(c *fiber.Ctx) error {
		ids, err := parseIDBatch(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report := newBatchReport()
		for _, id := range ids {
			race, err := st.GetRace(c.Context(), id)
			if err != nil {
				report.fail(id.String(), lookupErrorMessage(err, "race"))
				continue
			}
			if err := service.SynthesizeForecast(c.Context(), race); err != nil {
				report.fail(race.Name, err.Error())
				continue
			}
			report.ok()
		}
		return c.JSON(report)
	})

	v1.Get("/races/:slug/weather", func(c *fiber.Ctx) error {
		race, err := st.GetRaceBySlug(c.Context(), c.Params("slug"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "race not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load race")
		}

		observations, err := service.RaceWeather(c.Context(), race)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load race weather")
		}
		return c.JSON(fiber.Map{
			"race":         race,
			"observations": observations,
		})
	})
}

type createLocationRequest struct {
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type createRaceRequest struct {
	Name       string `json:"name" validate:"required"`
	Length     string `json:"length"`
	Date       string `json:"date" validate:"required"`
	LocationID string `json:"locationId" validate:"required"`
}

type idBatchRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

func parseIDBatch(c *fiber.Ctx) ([]uuid.UUID, error) {
	var req idBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// batchReport aggregates per-entity outcomes for a batch operation.
type batchReport struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Errors    []batchFailure `json:"errors,omitempty"`
}

type batchFailure struct {
	Entity  string `json:"entity"`
	Message string `json:"message"`
}

func newBatchReport() *batchReport {
	return &batchReport{}
}

func (r *batchReport) ok() {
	r.Succeeded++
}

func (r *batchReport) fail(entity, message string) {
	r.Failed++
	r.Errors = append(r.Errors, batchFailure{Entity: entity, Message: message})
}

func lookupErrorMessage(err error, kind string) string {
	if errors.Is(err, store.ErrNotFound) {
		return kind + " not found"
	}
	return err.Error()
}
