package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"leadpipe/config"
	"leadpipe/httputil"
	"leadpipe/models"
	"leadpipe/services"
	"leadpipe/storage"
)

// Orchestrator runs source scrapes end to end: handler, run bookkeeping,
// ingest into both schemas, optional raw archival.
type Orchestrator struct {
	cfg      *config.Config
	ops      *storage.SQLiteStore
	ingest   *services.IngestService
	archiver *storage.Archiver
	handlers map[string]Handler
	logger   *logrus.Logger
}

func NewOrchestrator(cfg *config.Config, ops *storage.SQLiteStore, ingest *services.IngestService, archiver *storage.Archiver, clients *httputil.Clients, logger *logrus.Logger) *Orchestrator {
	handlers := make(map[string]Handler)
	for id, srcCfg := range cfg.Sources {
		handlers[id] = NewHandler(srcCfg, cfg.Apify, clients)
	}

	return &Orchestrator{
		cfg:      cfg,
		ops:      ops,
		ingest:   ingest,
		archiver: archiver,
		handlers: handlers,
		logger:   logger,
	}
}

// RunAll scrapes every configured source. A failing source is logged and
// skipped; the rest still run.
func (o *Orchestrator) RunAll(ctx context.Context) error {
	for sourceID := range o.cfg.Sources {
		if err := o.RunSource(ctx, sourceID); err != nil {
			o.logger.WithError(err).WithField("source", sourceID).Error("Source scrape failed")
		}
	}
	return nil
}

func (o *Orchestrator) RunSource(ctx context.Context, sourceID string) error {
	srcCfg, ok := o.cfg.Sources[sourceID]
	if !ok {
		return fmt.Errorf("unknown source: %s", sourceID)
	}
	handler, ok := o.handlers[sourceID]
	if !ok {
		return fmt.Errorf("no handler for source: %s", sourceID)
	}

	run := &models.ScrapeRun{
		SourceID:  sourceID,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	runID, err := o.ops.CreateScrapeRun(run)
	if err != nil {
		return err
	}
	run.ID = runID

	o.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Starting scrape for %s", srcCfg.Name), sourceID)

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if err := o.ops.UpdateScrapeRun(run); err != nil {
			o.logger.WithError(err).WithField("source", sourceID).Warn("Could not update scrape run")
		}
	}()

	result, err := handler.Scrape(ctx)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		o.log(run.ID, models.LogLevelError, fmt.Sprintf("Scrape error: %v", err), sourceID)
		return err
	}

	run.ListingsFound = len(result.Listings)
	o.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Fetched %d listings", len(result.Listings)), sourceID)

	if o.archiver != nil && len(result.Raw) > 0 {
		if err := o.archiver.ArchiveRaw(ctx, sourceID, run.ID, result.Raw); err != nil {
			o.log(run.ID, models.LogLevelWarn, fmt.Sprintf("Archive failed: %v", err), sourceID)
		}
	}

	for _, listing := range result.Listings {
		ingestResult, err := o.ingest.ProcessListing(ctx, listing)
		if err != nil {
			run.ErrorsCount++
			o.log(run.ID, models.LogLevelError, fmt.Sprintf("Process error for %s: %v", listing.Address, err), sourceID)
			continue
		}
		if ingestResult.IsNewListing {
			run.ListingsNew++
		}
		if ingestResult.IsNewProperty {
			run.PropertiesNew++
		}
		if ingestResult.IsNewEvent {
			run.EventsNew++
		}
	}

	run.Status = models.RunStatusCompleted
	o.log(run.ID, models.LogLevelInfo,
		fmt.Sprintf("Completed: %d found, %d new rows, %d new properties, %d new events, %d errors",
			run.ListingsFound, run.ListingsNew, run.PropertiesNew, run.EventsNew, run.ErrorsCount), sourceID)

	return nil
}

func (o *Orchestrator) SourceIDs() []string {
	var ids []string
	for id := range o.cfg.Sources {
		ids = append(ids, id)
	}
	return ids
}

func (o *Orchestrator) log(runID int64, level models.LogLevel, message, sourceID string) {
	o.logger.WithField("source", sourceID).Info(message)
	if err := o.ops.Log(&runID, level, message, sourceID); err != nil {
		o.logger.WithError(err).WithField("source", sourceID).Warn("Could not write run log")
	}
}
