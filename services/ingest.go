package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"leadpipe/backfill"
	"leadpipe/config"
	"leadpipe/geo"
	"leadpipe/models"
	"leadpipe/storage"
)

// Confidence assigned to properties created from a live scrape, higher than
// migrated legacy rows because the source page was just observed.
const liveDataConfidence = 0.8

// IngestService takes freshly scraped listings and fans them out to both
// schemas: the legacy table the current frontend still reads, and the
// normalized property/event tables.
type IngestService struct {
	store  *storage.PostgresStore
	synth  *backfill.Synthesizer
	region config.RegionConfig
	logger *logrus.Logger
}

func NewIngestService(store *storage.PostgresStore, region config.RegionConfig, logger *logrus.Logger) *IngestService {
	return &IngestService{
		store:  store,
		synth:  backfill.NewSynthesizer(region),
		region: region,
		logger: logger,
	}
}

// IngestResult is the outcome of processing one scraped listing.
type IngestResult struct {
	IsNewListing  bool
	IsNewProperty bool
	IsNewEvent    bool
}

// ProcessListing is idempotent: re-scraping the same sale touches
// last_seen_at and nothing else.
func (s *IngestService) ProcessListing(ctx context.Context, l *models.LegacyListing) (*IngestResult, error) {
	result := &IngestResult{}
	now := time.Now()

	s.applyProximity(l)

	newRow, err := s.store.UpsertLegacyListing(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("upsert legacy listing: %w", err)
	}
	result.IsNewListing = newRow

	group := &backfill.AddressGroup{
		Key:            l.Address,
		Representative: l,
		Members:        []*models.LegacyListing{l},
	}
	property := s.synth.BuildProperty(group)
	property.DataConfidence = liveDataConfidence
	property.Status = models.PropertyStatusActive
	property.LastSeenAt = &now

	existing, err := s.store.GetPropertyByFingerprint(ctx, property.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if existing != nil {
		property = existing
		property.Status = models.PropertyStatusActive
		property.LastSeenAt = &now
	} else {
		result.IsNewProperty = true
	}

	if _, err := s.store.UpsertProperty(ctx, property); err != nil {
		return nil, fmt.Errorf("upsert property: %w", err)
	}

	event := s.synth.BuildEvent(l, property.ID)
	newEvent, err := s.store.InsertDistressEventIfNew(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	result.IsNewEvent = newEvent

	if err := s.store.EnsurePipeline(ctx, property.ID); err != nil {
		return nil, err
	}

	if result.IsNewProperty {
		s.logger.WithFields(logrus.Fields{
			"address": l.Address,
			"source":  l.Source,
		}).Info("New property ingested")
	}

	return result, nil
}

// applyProximity fills the legacy distance columns when the scrape supplied
// coordinates but no precomputed distance. The first configured hub is the
// legacy table's reference point.
func (s *IngestService) applyProximity(l *models.LegacyListing) {
	if l.Lat == nil || l.Lon == nil || l.DistanceMiles != nil || len(s.region.Hubs) == 0 {
		return
	}

	hub := s.region.Hubs[0]
	miles := geo.HaversineMiles(*l.Lat, *l.Lon, hub.Lat, hub.Lon)
	minutes := geo.EstimateDriveTimeMinutes(miles)
	within := minutes <= s.region.DriveTimeCutoff

	l.DistanceMiles = &miles
	l.WithinHalfHour = &within
}
