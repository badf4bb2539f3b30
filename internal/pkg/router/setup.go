package router

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SlotSync/app/controllers"
	"github.com/ManuelReschke/SlotSync/internal/pkg/middleware"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies carries the wired controllers into the routers.
type Dependencies struct {
	Calendars   *controllers.CalendarController
	Passthrough *controllers.PassthroughController
	OAuth       *controllers.OAuthController
	Jobs        *controllers.JobController

	APIKey middleware.APIKeyConfig
	// LimiterStorage backs the /api rate limiter; nil keeps counters in memory.
	LimiterStorage fiber.Storage
	LimiterMax     int
	Health         map[string]HealthCheck
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
