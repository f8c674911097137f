// Package httpapi is the thin HTTP adapter over the weather
// orchestrator. It never leaks internal error objects: failures surface
// as a short label plus an optional human-readable details string.
package httpapi

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tenkiweb/tenki/internal/weather"
)

var validate = validator.New()

// weatherRequest is the POST /api/weather body. City is optional and
// resolves to the default city when absent; Prompt overrides the
// built-in AI-fallback template.
type weatherRequest struct {
	City         string `json:"city" validate:"omitempty,lowercase,min=2,max=32"`
	ForceRefresh bool   `json:"forceRefresh"`
	Prompt       string `json:"prompt" validate:"omitempty,max=4000"`
}

type weatherResponse struct {
	Text         string `json:"text"`
	FromCache    bool   `json:"fromCache"`
	CachedAt     string `json:"cachedAt,omitempty"`
	IsAIFallback bool   `json:"isAIFallback,omitempty"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Post("/api/weather", func(c *fiber.Ctx) error {
		var req weatherRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.Report(c.Context(), req.City, req.ForceRefresh, req.Prompt)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to get weather data",
				"details": err.Error(),
			})
		}

		resp := weatherResponse{
			Text:         res.Text,
			FromCache:    res.FromCache,
			IsAIFallback: res.IsAIFallback,
		}
		if res.FromCache {
			resp.CachedAt = humanizeAge(time.Since(res.CachedAt))
		}
		return c.JSON(resp)
	})

	app.Post("/api/clear-cache", func(c *fiber.Ctx) error {
		service.ClearCache()
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Cache cleared",
		})
	})
}

// humanizeAge renders a cache age the way the client displays it:
// minutes under an hour, whole hours beyond.
func humanizeAge(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 0 {
		minutes = 0
	}
	if minutes < 60 {
		return fmt.Sprintf("%d分前", minutes)
	}
	return fmt.Sprintf("%d時間前", minutes/60)
}
