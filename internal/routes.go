package internal

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"homeboard/internal/auth"
	"homeboard/internal/controllers"
	"homeboard/internal/providers"
	"homeboard/internal/structures"
)

func InitRoutes(
	apiController *controllers.ApiController,
	controlController *controllers.ControlController,
	healthController *controllers.HealthController,
	guard *auth.Middleware,
	conf *structures.Config,
) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/health", http.HandlerFunc(healthController.Health))
	if conf.Metrics.Enabled {
		routers.Get("/metrics", promhttp.Handler())
	}

	routers.Get("/api/state", http.HandlerFunc(apiController.GetState))
	routers.Get("/api/popups", http.HandlerFunc(apiController.GetPopups))
	routers.Get("/api/display/{deviceId}/events", http.HandlerFunc(apiController.Events))

	routers.Post("/api/control/pair", http.HandlerFunc(controlController.Pair))
	routers.Get("/api/control/session", guard.Require(http.HandlerFunc(controlController.Session)))
	routers.Post("/api/control/state", guard.Require(http.HandlerFunc(controlController.UpdateState)))
	routers.Post("/api/control/modules/toggle", guard.Require(http.HandlerFunc(controlController.ToggleModule)))
	routers.Post("/api/control/layout", guard.Require(http.HandlerFunc(controlController.UpdateLayout)))
	routers.Get("/api/control/settings", guard.Require(http.HandlerFunc(controlController.Settings)))
	routers.Post("/api/control/calendar/ics", guard.Require(http.HandlerFunc(controlController.SetCalendarSource)))
	routers.Post("/api/control/weather/location", guard.Require(http.HandlerFunc(controlController.SetWeatherLocation)))
	routers.Get("/api/control/backup", guard.RequireAllowQuery(http.HandlerFunc(controlController.Backup)))

	routers.Get("/api/control/popups", guard.Require(http.HandlerFunc(controlController.PopupHistory)))
	routers.Post("/api/control/popups", guard.Require(http.HandlerFunc(controlController.CreatePopup)))
	routers.Post("/api/control/popups/clear", guard.Require(http.HandlerFunc(controlController.ClearPopups)))
	routers.Post("/api/control/popups/{id}", guard.Require(http.HandlerFunc(controlController.UpdatePopup)))
	return routers
}
