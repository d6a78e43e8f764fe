package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/config"
	"github.com/huayilab/calforge/internal/database"
	"github.com/huayilab/calforge/internal/events"
	"github.com/huayilab/calforge/internal/modules/backend"
	"github.com/huayilab/calforge/internal/modules/calibration"
	"github.com/huayilab/calforge/internal/modules/drift"
	"github.com/huayilab/calforge/internal/modules/noise"
	"github.com/huayilab/calforge/internal/scheduler"
	"github.com/huayilab/calforge/internal/server"
	"github.com/huayilab/calforge/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting calforge")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Re-init with the configured level once config is available
	log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	eventManager := events.NewManager(log)

	// Calibration ingestion
	calibrationRepo := calibration.NewRepository(db.Conn(), log)
	calibrationService := calibration.NewService(db, calibrationRepo, eventManager, log)

	// Drift tracking over calibration history
	historyDB := drift.NewHistoryDB(cfg.HistoryDir, log)
	driftService := drift.NewService(historyDB, eventManager, log)
	calibrationService.SetRecorder(driftService)

	// Channel synthesis and artifact assembly
	noiseService := noise.NewService(eventManager, log)
	artifactWriter := backend.NewWriter(cfg.ArtifactDir, log)
	backendRepo := backend.NewRepository(db.Conn(), log)
	backendService := backend.NewService(cfg, calibrationService, noiseService, artifactWriter, backendRepo, eventManager, log)

	noiseCfg, err := backendService.NoiseConfig(0)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid basis gate configuration")
	}

	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if err := registerJobs(sched, backendService, driftService, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}

	srv := server.New(server.Config{
		Port:               cfg.Port,
		Log:                log,
		DB:                 db,
		Config:             cfg,
		DevMode:            cfg.DevMode,
		CalibrationHandler: calibration.NewHandler(calibrationService, cfg.BackendName, log),
		NoiseHandler:       noise.NewHandler(noiseService, calibrationService, noiseCfg, cfg.BackendName, log),
		BackendHandler:     backend.NewHandler(backendService, log),
		DriftHandler:       drift.NewHandler(driftService, cfg.BackendName, log),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	backendService *backend.Service,
	driftService *drift.Service,
	cfg *config.Config,
	log zerolog.Logger,
) error {
	if err := sched.AddJob("@hourly", scheduler.NewArtifactBuildJob(backendService, cfg.BackendName, log)); err != nil {
		return err
	}
	return sched.AddJob("@every 6h", scheduler.NewDriftScanJob(driftService, cfg.BackendName, log))
}
