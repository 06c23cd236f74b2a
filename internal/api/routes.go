package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TenantLister reports the tenants with a live Personio client.
type TenantLister interface {
	Tenants() []string
}

// RegisterRoutes registers all HTTP routes on the Fiber app.
func RegisterRoutes(app *fiber.App, tenants TenantLister, h *HRHandler) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		active := []string{}
		if tenants != nil {
			active = tenants.Tenants()
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"tenants": active,
		})
	})

	// API routes
	t := app.Group("/api/v1/:tenant")
	t.Get("/employees", h.ListEmployees)
	t.Get("/employees/:id", h.GetEmployee)
	t.Get("/attendances", h.ListAttendances)
	t.Post("/attendances", h.CreateAttendance)
	t.Delete("/attendances/:id", h.DeleteAttendance)
	t.Get("/time-off-types", h.ListTimeOffTypes)
	t.Get("/time-offs", h.ListTimeOffs)
	t.Post("/time-offs", h.CreateTimeOff)
	t.Get("/time-offs/:id", h.GetTimeOff)
	t.Delete("/time-offs/:id", h.DeleteTimeOff)
}
