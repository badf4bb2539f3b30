package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/SlotSync/internal/pkg/middleware"
)

const defaultLimiterMax = 60

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	limit := h.deps.LimiterMax
	if limit <= 0 {
		limit = defaultLimiterMax
	}

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		Storage:    h.deps.LimiterStorage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "error": "Too many requests"})
		},
	}))

	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware(h.deps.APIKey))

	cal := h.deps.Calendars
	v1.Get("/calendars", cal.HandleListCalendars)
	v1.Get("/calendars/:calendarId/free-slots", cal.HandleFreeSlots)
	v1.Post("/calendars/:calendarId/sync", cal.HandleSyncCalendar)
	v1.Post("/calendars/:calendarId/booked-slots/sync", cal.HandleSyncBookedSlots)

	pt := h.deps.Passthrough
	v1.Post("/appointments", pt.HandleCreateAppointment)
	v1.Post("/contacts", pt.HandleUpsertContact)
	v1.Post("/custom-fields", pt.HandleCreateCustomField)
	v1.Get("/locations/:locationId", pt.HandleGetLocation)
	v1.Get("/companies/:companyId", pt.HandleGetCompany)

	v1.Get("/jobs/stats", h.deps.Jobs.HandleJobStats)
	v1.Get("/jobs/:id", h.deps.Jobs.HandleGetJob)
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
