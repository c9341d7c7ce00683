package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/apod-api/internal/apod"
)

var validate = validator.New()

const (
	msgInvalidDate = "Date format is not valid, Use YYYY-MM-DD"
	msgNotFound    = "No APOD data found for the specified date."
	msgNotFoundAll = "No APODs data found for the specified dates."
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *apod.Service) {
	g := app.Group("/apod")

	g.Get("/today", func(c *fiber.Ctx) error {
		rec, err := service.GetForDate(c.UserContext(), time.Time{})
		if err != nil {
			return mapError(err)
		}
		if rec.Date == "" {
			return fiber.NewError(fiber.StatusNotFound, msgNotFound)
		}
		return c.JSON(rec)
	})

	g.Get("/by_date", func(c *fiber.Ctx) error {
		q := byDateQuery{Date: c.Query("date")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, msgInvalidDate)
		}

		var date time.Time
		if q.Date != "" {
			d, err := apod.ParseDate(q.Date)
			if err != nil {
				return mapError(err)
			}
			date = d
		}

		rec, err := service.GetForDate(c.UserContext(), date)
		if err != nil {
			return mapError(err)
		}
		if rec.Date == "" {
			return fiber.NewError(fiber.StatusNotFound, msgNotFound)
		}
		return c.JSON(rec)
	})

	g.Get("/by_range_date", func(c *fiber.Ctx) error {
		var q rangeQuery
		if err := q.bind(c, service.Today()); err != nil {
			return err
		}

		recs, err := service.GetForRange(c.UserContext(), q.start, q.end)
		if err != nil {
			return mapError(err)
		}
		if len(recs) == 0 {
			return fiber.NewError(fiber.StatusNotFound, msgNotFoundAll)
		}
		return c.JSON(recs)
	})
}

// byDateQuery holds query parameters for the by_date endpoint.
type byDateQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

// rangeQuery holds query parameters for the by_range_date endpoint.
// A missing bound defaults to today.
type rangeQuery struct {
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`

	start, end time.Time
}

func (r *rangeQuery) bind(c *fiber.Ctx, today time.Time) error {
	r.StartDate = c.Query("startDate")
	r.EndDate = c.Query("endDate")

	if err := validate.Struct(r); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidDate)
	}

	r.start, r.end = today, today

	if r.StartDate != "" {
		d, err := apod.ParseDate(r.StartDate)
		if err != nil {
			return mapError(err)
		}
		r.start = d
	}
	if r.EndDate != "" {
		d, err := apod.ParseDate(r.EndDate)
		if err != nil {
			return mapError(err)
		}
		r.end = d
	}
	return nil
}

// mapError translates orchestrator errors to HTTP errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, apod.ErrInvalidDate):
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidDate)
	case errors.Is(err, apod.ErrInvalidRange):
		return fiber.NewError(fiber.StatusBadRequest, apod.ErrInvalidRange.Error())
	case errors.Is(err, apod.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, msgNotFound)
	case errors.Is(err, apod.ErrUpstream):
		zap.S().Warnw("upstream request failed", "err", err)
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch APOD data from upstream")
	default:
		zap.S().Errorw("apod request failed", "err", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch APOD data")
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
