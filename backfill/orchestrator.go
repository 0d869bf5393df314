package backfill

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"leadpipe/config"
	"leadpipe/models"
)

// Stats accumulates counts across the run. Dry-run and apply produce
// identical statistics; only write side effects differ.
type Stats struct {
	LegacyRows              int
	UniqueAddresses         int
	PropertiesCreated       int
	DistressEventsCreated   int
	ContactsCreated         int
	PropertyContactsCreated int
	LeadPipelineCreated     int
	Errors                  []string
}

// ValidationCheck is one advisory post-run invariant.
type ValidationCheck struct {
	Name     string
	Expected int64
	Actual   int64
	Passed   bool
}

// Orchestrator drives the migration through its fixed phase sequence:
// fetch -> group -> properties -> events -> contacts -> pipeline -> validate.
// Any write failure aborts the run; there is no partial-commit recovery, so
// callers are expected to dry-run first.
type Orchestrator struct {
	store  Store
	synth  *Synthesizer
	logger *logrus.Logger
	apply  bool
}

func NewOrchestrator(store Store, region config.RegionConfig, logger *logrus.Logger, apply bool) *Orchestrator {
	return &Orchestrator{
		store:  store,
		synth:  NewSynthesizer(region),
		logger: logger,
		apply:  apply,
	}
}

func (o *Orchestrator) Run(ctx context.Context) (*Stats, []ValidationCheck, error) {
	stats := &Stats{}
	mode := "dry-run"
	if o.apply {
		mode = "apply"
	}
	o.logger.WithField("mode", mode).Info("Starting legacy backfill")

	// FetchLegacy: failure here is fatal.
	listings, err := o.store.FetchLegacyListings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch legacy listings: %w", err)
	}
	stats.LegacyRows = len(listings)
	o.logger.Infof("Fetched %d legacy rows", len(listings))

	// GroupByAddress.
	groups := GroupByAddress(listings)
	stats.UniqueAddresses = len(groups)
	o.logger.Infof("Grouped into %d unique addresses", len(groups))

	// CreateProperties.
	propertyByKey := make(map[string]*models.Property, len(groups))
	properties := make([]*models.Property, 0, len(groups))
	for _, group := range groups {
		p := o.synth.BuildProperty(group)
		propertyByKey[group.Key] = p
		properties = append(properties, p)
	}
	if o.apply {
		if err := o.store.InsertProperties(ctx, properties); err != nil {
			return stats, nil, fmt.Errorf("insert properties: %w", err)
		}
	}
	stats.PropertiesCreated = len(properties)
	o.logger.Infof("Created %d properties", len(properties))

	// CreateDistressEvents: one event per legacy row. The grouper covers
	// every row, but a missing mapping is guarded as a soft error rather
	// than a panic.
	keyByListing := make(map[int64]string, len(listings))
	for _, group := range groups {
		for _, m := range group.Members {
			keyByListing[m.ID] = group.Key
		}
	}

	var events []*models.DistressEvent
	resolved := make([]*models.LegacyListing, 0, len(listings))
	for _, listing := range listings {
		prop, ok := propertyByKey[keyByListing[listing.ID]]
		if !ok {
			stats.Errors = append(stats.Errors,
				fmt.Sprintf("no property for legacy row %d (%s)", listing.ID, listing.Address))
			continue
		}
		events = append(events, o.synth.BuildEvent(listing, prop.ID))
		resolved = append(resolved, listing)
	}
	if o.apply {
		if err := o.store.InsertDistressEvents(ctx, events); err != nil {
			return stats, nil, fmt.Errorf("insert distress events: %w", err)
		}
	}
	stats.DistressEventsCreated = len(events)
	o.logger.Infof("Created %d distress events", len(events))

	// CreateContacts: contacts plus property links, and remember which
	// groups produced any contact for stage assignment.
	enrichedKeys := make(map[string]bool)
	var contacts []*models.Contact
	var links []*models.PropertyContact
	for _, listing := range resolved {
		key := keyByListing[listing.ID]
		cs, ls := o.synth.BuildContacts(listing, propertyByKey[key].ID)
		if len(cs) > 0 {
			enrichedKeys[key] = true
		}
		contacts = append(contacts, cs...)
		links = append(links, ls...)
	}
	if o.apply {
		if err := o.store.InsertContacts(ctx, contacts); err != nil {
			return stats, nil, fmt.Errorf("insert contacts: %w", err)
		}
		if err := o.store.InsertPropertyContacts(ctx, links); err != nil {
			return stats, nil, fmt.Errorf("insert property contacts: %w", err)
		}
	}
	stats.ContactsCreated = len(contacts)
	stats.PropertyContactsCreated = len(links)
	o.logger.Infof("Created %d contacts (%d links)", len(contacts), len(links))

	// CreatePipelineStages: exactly one row per property.
	pipelines := make([]*models.LeadPipeline, 0, len(groups))
	for _, group := range groups {
		pipelines = append(pipelines, o.synth.BuildPipeline(propertyByKey[group.Key].ID, enrichedKeys[group.Key]))
	}
	if o.apply {
		if err := o.store.UpsertLeadPipelines(ctx, pipelines); err != nil {
			return stats, nil, fmt.Errorf("upsert lead pipelines: %w", err)
		}
	}
	stats.LeadPipelineCreated = len(pipelines)
	o.logger.Infof("Created %d pipeline rows", len(pipelines))

	checks := o.validate(ctx, stats)
	for _, c := range checks {
		if !c.Passed {
			o.logger.WithFields(logrus.Fields{
				"check":    c.Name,
				"expected": c.Expected,
				"actual":   c.Actual,
			}).Warn("Validation check failed")
		}
	}

	o.logger.WithField("soft_errors", len(stats.Errors)).Info("Backfill complete")
	return stats, checks, nil
}

// validate compares the run's count invariants. Failures are advisory; they
// never fail the process.
func (o *Orchestrator) validate(ctx context.Context, stats *Stats) []ValidationCheck {
	checks := []ValidationCheck{
		check("distress events == legacy rows", int64(stats.LegacyRows), int64(stats.DistressEventsCreated)),
		check("properties == unique addresses", int64(stats.UniqueAddresses), int64(stats.PropertiesCreated)),
		check("pipeline rows == properties", int64(stats.PropertiesCreated), int64(stats.LeadPipelineCreated)),
		check("contact links == contacts", int64(stats.ContactsCreated), int64(stats.PropertyContactsCreated)),
	}

	// In apply mode also verify the tables actually hold what we wrote.
	if o.apply {
		for _, tc := range []struct {
			table    string
			expected int64
		}{
			{"properties", int64(stats.PropertiesCreated)},
			{"distress_events", int64(stats.DistressEventsCreated)},
			{"lead_pipeline", int64(stats.LeadPipelineCreated)},
		} {
			count, err := o.store.TableCount(ctx, tc.table)
			if err != nil {
				o.logger.WithError(err).Warnf("Could not count %s for validation", tc.table)
				continue
			}
			checks = append(checks, check("db "+tc.table+" rows", tc.expected, count))
		}
	}

	return checks
}

func check(name string, expected, actual int64) ValidationCheck {
	return ValidationCheck{Name: name, Expected: expected, Actual: actual, Passed: expected == actual}
}
