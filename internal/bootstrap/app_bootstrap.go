package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kaimonolist/linkd/internal/config"

	"github.com/rs/zerolog/log"
)

type BootstrapApp struct {
	config   config.Config
	services Services
}

func NewBootstrapApp(config config.Config) *BootstrapApp {
	return &BootstrapApp{
		config: config,
	}
}

func (app *BootstrapApp) Setup() error {
	log.Trace().Interface("config", app.config).Msg("Config dump")

	services, err := app.initServices()

	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	app.services = services

	router, err := app.setupRouter()

	if err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	log.Debug().Msg("Starting database cleanup routine")
	go app.dbCleanup()

	address := fmt.Sprintf("%s:%d", app.config.Server.Address, app.config.Server.Port)
	log.Info().Msgf("Starting server on %s", address)
	if err := router.Run(address); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}

	return nil
}

func (app *BootstrapApp) dbCleanup() {
	interval := time.Duration(app.config.Cleanup.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ctx := context.Background()

	for ; true; <-ticker.C {
		log.Debug().Msg("Cleaning up expired records")
		summary, err := app.services.cleanupService.PerformCleanup(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to clean up expired records")
			continue
		}
		log.Debug().Interface("summary", summary).Msg("Cleanup finished")
	}
}
