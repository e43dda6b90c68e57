package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zabecode/dac/internal/api/handler"
	mw "github.com/zabecode/dac/internal/api/middleware"
	"github.com/zabecode/dac/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	Health http.HandlerFunc

	Devices  *handler.DeviceHandler
	Sensors  *handler.SensorHandler
	Readings *handler.ReadingHandler
	Keys     *handler.APIKeyHandler
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", deps.Health)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequirePermission(models.ModuleDevices))

			r.Get("/api/v1/devices", deps.Devices.List)
			r.Post("/api/v1/devices", deps.Devices.Create)
			r.Get("/api/v1/devices/{deviceID}", deps.Devices.Get)
			r.Put("/api/v1/devices/{deviceID}", deps.Devices.Update)
			r.Delete("/api/v1/devices/{deviceID}", deps.Devices.Delete)

			// Gateway device/sensor upsert
			r.Post("/api/v1/dac/devices/publish", deps.Devices.Publish)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequirePermission(models.ModuleSensors))

			r.Get("/api/v1/sensors", deps.Sensors.List)
			r.Post("/api/v1/sensors", deps.Sensors.Create)
			r.Get("/api/v1/sensors/{sensorID}", deps.Sensors.Get)
			r.Put("/api/v1/sensors/{sensorID}", deps.Sensors.Update)
			r.Delete("/api/v1/sensors/{sensorID}", deps.Sensors.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequirePermission(models.ModuleReadings))

			r.Get("/api/v1/readings", deps.Readings.List)
			r.Post("/api/v1/readings", deps.Readings.Create)
			r.Get("/api/v1/readings/{readingID}", deps.Readings.Get)
			r.Put("/api/v1/readings/{readingID}", deps.Readings.Update)
			r.Delete("/api/v1/readings/{readingID}", deps.Readings.Delete)

			// Gateway batch ingest
			r.Post("/api/v1/dac/readings/batch", deps.Readings.BatchPublish)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequirePermission(models.ModuleAPIKeys))

			r.Post("/api/v1/admin/keys", deps.Keys.Create)
			r.Get("/api/v1/admin/keys", deps.Keys.List)
			r.Put("/api/v1/admin/keys/{keyID}", deps.Keys.Update)
			r.Delete("/api/v1/admin/keys/{keyID}", deps.Keys.Revoke)
			r.Get("/api/v1/admin/modules", deps.Keys.Modules)
		})
	})

	return r
}
