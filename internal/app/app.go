package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"gmail-sender-stats-go/internal/auth"
	"gmail-sender-stats-go/internal/config"
	"gmail-sender-stats-go/internal/db"
	"gmail-sender-stats-go/internal/fetcher"
	"gmail-sender-stats-go/internal/ingest"
	"gmail-sender-stats-go/internal/metrics"
	"gmail-sender-stats-go/internal/repository"
)

// Run performs one full ingestion run: load config, open storage, build the
// configured fetcher, walk the account, exit
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting sender statistics run")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()
	repo := repository.New(dbConn)

	ctx := context.Background()

	var f fetcher.MessageFetcher
	if cfg.Gmail.UseIMAP {
		f, err = fetcher.NewIMAPFetcher(cfg)
		if err != nil {
			return fmt.Errorf("failed to create IMAP fetcher: %w", err)
		}
		logrus.Info("Using IMAP for message fetching")
	} else {
		service, err := auth.NewGmailService(ctx, &cfg.Gmail)
		if err != nil {
			return fmt.Errorf("failed to create Gmail service: %w", err)
		}
		f = fetcher.NewGmailFetcher(service, cfg)
		logrus.Info("Using Gmail API for message fetching")
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Errorf("Failed to close fetcher: %v", err)
		}
	}()

	ingestor := ingest.New(f, repo, m, &cfg.Ingest)
	runErr := ingestor.Run(ctx)

	if cfg.Metrics.PushGatewayURL != "" {
		if err := m.Push(cfg.Metrics.PushGatewayURL, cfg.Metrics.JobName); err != nil {
			logrus.Errorf("Failed to push metrics: %v", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	logrus.Info("Sender statistics run completed")
	return nil
}
