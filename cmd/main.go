package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"inspection-station/config"
	"inspection-station/internal/container"
	"inspection-station/internal/domain/port"
	"inspection-station/internal/infrastructure/api"
	"inspection-station/internal/infrastructure/camera"
	"inspection-station/internal/infrastructure/display"
	"inspection-station/internal/infrastructure/notify"
	"inspection-station/internal/infrastructure/storage"
	"inspection-station/internal/infrastructure/vision"
	applogger "inspection-station/internal/logger"
	"inspection-station/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := applogger.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting inspection station", zap.String("workflow", cfg.Workflow))

	station, err := config.LoadStation(cfg.StationFile)
	if err != nil {
		logger.Fatal("failed to load station config", zap.Error(err))
	}

	def, err := station.WorkflowDefinition(cfg.Workflow)
	if err != nil {
		logger.Fatal("failed to resolve workflow", zap.Error(err))
	}

	// Хранилище записей: Postgres при заданном DSN, иначе память.
	var repo port.RecordRepository
	if cfg.DatabaseDSN != "" {
		pg, err := storage.NewPostgresRecordRepository(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer func() {
			pg.Close()
			logger.Info("database connection closed")
		}()
		repo = pg
	} else {
		logger.Warn("DATABASE_DSN is not set, using in-memory record storage")
		repo = storage.NewMemoryRecordRepository()
	}

	station.ExtraTables = append(station.ExtraTables, cfg.PrevStageTable)
	srv := server.New(cfg.ServerAddr, repo, station.TableSchemas(), logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("records API server stopped", zap.Error(err))
			cancel()
		}
	}()

	// Источник кадров: живая камера, при недоступности — симулятор.
	var source port.FrameSource
	var engine port.InspectionEngine
	if !station.Camera.Simulate {
		if err := camera.Probe(station.Camera.Device); err != nil {
			logger.Warn("camera unavailable, falling back to simulation",
				zap.Int("device", station.Camera.Device), zap.Error(err))
			station.Camera.Simulate = true
		}
	}
	if station.Camera.Simulate {
		source = camera.NewSimulatedSource(
			station.Camera.Width, station.Camera.Height, station.Camera.FPS, logger)
		engine = vision.NewSimulatedEngine(time.Now().UnixNano())
	} else {
		source = camera.NewLiveSource(station.Camera.Device,
			station.Camera.Width, station.Camera.Height, station.Camera.FPS, logger)
		engine = vision.NewGoCVEngine()
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.PrevStageTable, def.Steps[0].Table,
		cfg.APITimeout, logger)

	var notifier port.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tn, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Error("failed to create telegram notifier", zap.Error(err))
		} else {
			notifier = tn
		}
	}

	disp := display.NewLogDisplay(logger, 10*time.Second)

	c, err := container.New(source, engine, disp, client, client, notifier,
		def, station.Capture.Frames, station.Capture.Method, logger)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}
	defer c.Workflow.Close()

	if err := c.Camera.Start(); err != nil {
		logger.Fatal("failed to start frame source", zap.Error(err))
	}

	runConsole(ctx, c.Workflow, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
