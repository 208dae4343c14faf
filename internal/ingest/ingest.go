package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"gmail-sender-stats-go/internal/config"
	"gmail-sender-stats-go/internal/fetcher"
	"gmail-sender-stats-go/internal/metrics"
	"gmail-sender-stats-go/internal/models"
	"gmail-sender-stats-go/internal/parser"
	"gmail-sender-stats-go/internal/repository"
)

// Ingestor walks the full mailbox listing and maintains the per-sender
// counts. One Run is one job invocation: a complete pass over every listing
// page, retried from the first page on failure until the budget is spent.
type Ingestor struct {
	fetcher    fetcher.MessageFetcher
	repo       *repository.Repository
	metrics    *metrics.Metrics
	maxRetries int
}

// New creates a new ingestor
func New(f fetcher.MessageFetcher, repo *repository.Repository, m *metrics.Metrics, cfg *config.IngestConfig) *Ingestor {
	return &Ingestor{
		fetcher:    f,
		repo:       repo,
		metrics:    m,
		maxRetries: cfg.MaxRetries,
	}
}

// Run performs the ingestion with the top-level retry budget. A failed pass
// restarts the listing from the beginning; the seen-mail check makes the
// replay of already-counted messages a cheap no-op. There is no token
// resumption across attempts.
func (i *Ingestor) Run(ctx context.Context) error {
	var err error
	for attempt := 0; attempt <= i.maxRetries; attempt++ {
		if attempt > 0 {
			logrus.Errorf("Ingestion pass failed, retrying (%d/%d): %v", attempt, i.maxRetries, err)
		}

		startTime := time.Now()
		err = i.runPass(ctx)
		i.metrics.PassDuration.Observe(time.Since(startTime).Seconds())

		if err == nil {
			logrus.Infof("Ingestion pass completed in %v", time.Since(startTime))
			return nil
		}
		i.metrics.PassFailures.Inc()
	}

	return fmt.Errorf("ingestion failed after %d attempts: %w", i.maxRetries+1, err)
}

// runPass is one complete traversal of the remote listing, following the
// page-token chain until it ends
func (i *Ingestor) runPass(ctx context.Context) error {
	pageToken := ""
	for {
		stubs, nextToken, err := i.fetcher.ListPage(ctx, pageToken)
		if err != nil {
			return fmt.Errorf("failed to list message page: %w", err)
		}
		i.metrics.PagesListed.Inc()

		if err := i.processPage(ctx, stubs); err != nil {
			return err
		}

		if nextToken == "" {
			return nil
		}
		pageToken = nextToken
	}
}

// processPage handles the stubs of one page in listing order
func (i *Ingestor) processPage(ctx context.Context, stubs []models.MessageStub) error {
	for _, stub := range stubs {
		if err := i.processMessage(ctx, stub); err != nil {
			return fmt.Errorf("failed to process message %s: %w", stub.ID, err)
		}
	}
	return nil
}

// processMessage counts a single message exactly once. Already-seen
// identifiers are skipped without a fetch; new messages are fetched,
// normalized and recorded in one per-message transaction.
func (i *Ingestor) processMessage(ctx context.Context, stub models.MessageStub) error {
	if stub.ID == "" {
		return &models.DataError{Reason: "message stub missing identifier"}
	}

	alreadySeen, err := i.repo.Seen(stub.ID)
	if err != nil {
		return err
	}
	if alreadySeen {
		logrus.Debugf("Message %s already counted, skipping", stub.ID)
		i.metrics.MessagesSkipped.Inc()
		return nil
	}

	message, err := i.fetcher.GetMessage(ctx, stub.ID)
	if err != nil {
		return err
	}
	i.metrics.MessagesFetched.Inc()

	from := parser.SenderAddress(message)
	logrus.Infof("sender: %q", from)

	sender := parser.CleanSender(from)
	count, err := i.repo.RecordMessage(stub.ID, sender)
	if err != nil {
		return err
	}
	i.metrics.MessagesProcessed.Inc()

	logrus.Debugf("Sender %s has now sent %d messages", sender, count)
	return nil
}
