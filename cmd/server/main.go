package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"gstreco/internal/auth"
	"gstreco/internal/config"
	"gstreco/internal/email/noop"
	"gstreco/internal/email/ses"
	"gstreco/internal/handler"
	"gstreco/internal/logger"
	"gstreco/internal/port"
	"gstreco/internal/reco"
	"gstreco/internal/repository/postgres"
	"gstreco/internal/router"
	"gstreco/internal/service"
	s3storage "gstreco/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		logger.LogError(log, "server", "run", err, nil)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	runRepo := postgres.NewRunRepo(db)

	// Initialize storage
	reports, err := s3storage.NewReportStore(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	notifier, err := newNotifier(&cfg.Email, log)
	if err != nil {
		return fmt.Errorf("failed to initialize email: %w", err)
	}

	// Initialize services
	engine := reco.NewEngine(cfg.Reco.Thresholds(), reco.WithLogger(log.WithField("component", "reco")))
	recoSvc := service.NewRecoService(engine, reports, runRepo, notifier, cfg.Server.RequestTimeout, log.WithField("component", "reco_service"))
	offsetSvc := service.NewOffsetService(log.WithField("component", "offset_service"))
	runSvc := service.NewRunService(runRepo, reports)

	// Setup router
	r := router.Setup(cfg, log, auth.NewVerifier(&cfg.JWT), router.Handlers{
		Reco:   handler.NewRecoHandler(recoSvc, cfg.S3.MaxFileSizeMB),
		Offset: handler.NewOffsetHandler(offsetSvc),
		Runs:   handler.NewRunHandler(runSvc),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{"database": runRepo, "storage": reports}),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Server.Port, "environment": cfg.Server.Environment}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newNotifier(cfg *config.EmailConfig, log logrus.FieldLogger) (port.ReportNotifier, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESNotifier(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.FrontendURL)
	case "noop", "":
		return noop.NewNoopNotifier(log.WithField("component", "email")), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
