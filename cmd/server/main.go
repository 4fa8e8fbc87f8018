package main

import (
	"fmt"
	"log"

	"orcavox/internal/analytics"
	"orcavox/internal/config"
	"orcavox/internal/email/noop"
	"orcavox/internal/email/ses"
	"orcavox/internal/handler"
	"orcavox/internal/port"
	"orcavox/internal/repository/postgres"
	"orcavox/internal/router"
	"orcavox/internal/service"
	s3storage "orcavox/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	prefRepo := postgres.NewPreferenceRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	// Initialize services
	rec := analytics.NewRecorder()
	budgetSvc := service.NewBudgetService(cfg, rec, prefRepo, s3Client, emailSender)

	// Initialize handlers
	budgetH := handler.NewBudgetHandler(budgetSvc)
	statsH := handler.NewStatsHandler(budgetSvc)
	sessionH := handler.NewSessionHandler(budgetSvc, &cfg.Session)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, budgetH, statsH, sessionH, healthH)

	log.Printf("Server starting on %s (session %s)", cfg.Server.Port, rec.SessionID())
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
