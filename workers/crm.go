package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"leadpipe/services"
	"leadpipe/storage"
)

// CRMWorker pushes enriched leads that have not been synced yet into the
// CRM, then flags them so they are not re-pushed.
type CRMWorker struct {
	store  *storage.PostgresStore
	crm    *services.CRMClient
	logger *logrus.Logger
}

func NewCRMWorker(store *storage.PostgresStore, crm *services.CRMClient, logger *logrus.Logger) *CRMWorker {
	return &CRMWorker{store: store, crm: crm, logger: logger}
}

func (w *CRMWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("CRM worker stopping")
			return
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *CRMWorker) processBatch(ctx context.Context, batchSize int) {
	leads, err := w.store.ListLeadsForCRMSync(ctx, batchSize)
	if err != nil {
		w.logger.WithError(err).Error("CRM: query failed")
		return
	}
	if len(leads) == 0 {
		return
	}

	w.logger.WithField("count", len(leads)).Info("CRM: syncing leads")

	for _, lead := range leads {
		contacts, err := w.store.ListContactsForProperty(ctx, lead.Property.ID)
		if err != nil {
			w.logger.WithError(err).Error("CRM: load contacts failed")
			continue
		}

		if err := w.crm.UpsertLead(ctx, lead, contacts); err != nil {
			w.logger.WithError(err).WithField("address", lead.Property.FullAddress).Error("CRM: push failed")
			continue
		}

		if err := w.store.MarkLeadCRMSynced(ctx, lead.Property.ID); err != nil {
			w.logger.WithError(err).Error("CRM: mark synced failed")
		}
	}
}
