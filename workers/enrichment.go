package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"leadpipe/services"
	"leadpipe/storage"
)

// EnrichmentWorker skip-traces stage-new properties that have no contacts
// yet, in batches on a fixed interval.
type EnrichmentWorker struct {
	store  *storage.PostgresStore
	svc    *services.SkipTraceService
	logger *logrus.Logger
}

func NewEnrichmentWorker(store *storage.PostgresStore, svc *services.SkipTraceService, logger *logrus.Logger) *EnrichmentWorker {
	return &EnrichmentWorker{store: store, svc: svc, logger: logger}
}

func (w *EnrichmentWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Enrichment worker stopping")
			return
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *EnrichmentWorker) processBatch(ctx context.Context, batchSize int) {
	properties, err := w.store.ListPropertiesNeedingEnrichment(ctx, batchSize)
	if err != nil {
		w.logger.WithError(err).Error("Enrichment: query failed")
		return
	}
	if len(properties) == 0 {
		return
	}

	w.logger.WithField("count", len(properties)).Info("Enrichment: processing batch")

	for _, p := range properties {
		result, err := w.svc.Enrich(ctx, p)
		if err != nil {
			w.logger.WithError(err).WithField("address", p.FullAddress).Error("Enrichment: skip trace failed")
			continue
		}
		if result.NoData {
			w.logger.WithField("address", p.FullAddress).Debug("Enrichment: no contact data")
		}

		// Rate limit between provider calls.
		time.Sleep(500 * time.Millisecond)
	}
}
