package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"homeboard/internal/jobs/interfaces"
	"homeboard/internal/providers"
	"homeboard/internal/push"
	"homeboard/internal/services"
	"homeboard/internal/storage"
	"homeboard/internal/structures"
)

type App struct {
	WebServer *http.Server
}

// Boot prepares persistent state before the server accepts requests:
// generate-once settings, backup restore into an empty store, default seed.
func Boot(ctx context.Context, settings *services.SettingsService, state services.StateServiceInterface, scheduler interfaces.SchedulerInterface, logger providers.Logger) error {
	if err := settings.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap settings: %w", err)
	}
	if err := scheduler.Restore(); err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}
	if _, err := state.Current(ctx); err != nil {
		return fmt.Errorf("seed state: %w", err)
	}
	return nil
}

// NewHandler wraps the route table with access logging and metrics.
func NewHandler(router providers.RouterProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) http.Handler {
	return router.Build(
		providers.AccessLogMiddleware(logger),
		providers.MetricsMiddleware(metrics),
	)
}

func NewApp(
	conf *structures.Config,
	logger providers.Logger,
	router providers.RouterProviderInterface,
	metrics providers.MetricsProviderInterface,
	settings *services.SettingsService,
	state services.StateServiceInterface,
	hub push.HubInterface,
	scheduler interfaces.SchedulerInterface,
	store storage.Store,
) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	if err := Boot(context.Background(), settings, state, scheduler, logger); err != nil {
		logger.Fatalf(providers.TypeApp, "Storage unavailable: %s", err)
		return nil, err
	}

	app := &App{
		WebServer: &http.Server{
			Addr:              conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:           NewHandler(router, logger, metrics),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}

	scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		scheduler.Stop()
		hub.Close()
		_ = store.Close()
		return nil, fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()
	// ends the SSE streams so Shutdown does not wait on them
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil {
		logger.Errorf(providers.TypeApp, "HTTP shutdown: %s", err)
	}
	if err := scheduler.Persist(); err != nil {
		logger.Errorf(providers.TypeApp, "Final backup failed: %s", err)
	}
	if err := store.Close(); err != nil {
		logger.Errorf(providers.TypeApp, "Close store: %s", err)
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	logger.Close()
	return app, nil
}
