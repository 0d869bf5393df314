package workers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leadpipe/storage"
)

// eventDateFormats covers the date spellings the legacy sources publish.
var eventDateFormats = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"January 2, 2006",
}

// HealthcheckWorker ages out the pipeline: scheduled events whose sale date
// has passed become expired, and properties no scrape has seen recently
// become stale. Nothing is ever deleted.
type HealthcheckWorker struct {
	store      *storage.PostgresStore
	staleAfter time.Duration
	logger     *logrus.Logger
}

func NewHealthcheckWorker(store *storage.PostgresStore, staleAfter time.Duration, logger *logrus.Logger) *HealthcheckWorker {
	return &HealthcheckWorker{store: store, staleAfter: staleAfter, logger: logger}
}

func (w *HealthcheckWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Healthcheck worker stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *HealthcheckWorker) RunOnce(ctx context.Context) {
	now := time.Now()

	events, err := w.store.ListScheduledEvents(ctx)
	if err != nil {
		w.logger.WithError(err).Error("Healthcheck: list events failed")
		return
	}

	var expired []uuid.UUID
	for _, e := range events {
		saleDate, ok := parseEventDate(e.EventDate)
		if !ok {
			continue // unparseable dates are left alone
		}
		if saleDate.Before(now.Truncate(24 * time.Hour)) {
			expired = append(expired, e.ID)
		}
	}

	if len(expired) > 0 {
		n, err := w.store.MarkEventsExpired(ctx, expired)
		if err != nil {
			w.logger.WithError(err).Error("Healthcheck: expire events failed")
		} else {
			w.logger.WithField("count", n).Info("Healthcheck: expired past events")
		}
	}

	stale, err := w.store.MarkStaleProperties(ctx, now.Add(-w.staleAfter))
	if err != nil {
		w.logger.WithError(err).Error("Healthcheck: mark stale failed")
		return
	}
	if stale > 0 {
		w.logger.WithField("count", stale).Info("Healthcheck: marked stale properties")
	}
}

func parseEventDate(s string) (time.Time, bool) {
	for _, layout := range eventDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
