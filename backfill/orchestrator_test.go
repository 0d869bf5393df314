package backfill

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/models"
)

// memStore is an in-memory Store for orchestrator tests.
type memStore struct {
	legacy   []*models.LegacyListing
	fetchErr error
	writeErr error

	properties []*models.Property
	events     []*models.DistressEvent
	contacts   []*models.Contact
	links      []*models.PropertyContact
	pipelines  []*models.LeadPipeline
}

func (m *memStore) FetchLegacyListings(ctx context.Context) ([]*models.LegacyListing, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.legacy, nil
}

func (m *memStore) InsertProperties(ctx context.Context, ps []*models.Property) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.properties = append(m.properties, ps...)
	return nil
}

func (m *memStore) InsertDistressEvents(ctx context.Context, es []*models.DistressEvent) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.events = append(m.events, es...)
	return nil
}

func (m *memStore) InsertContacts(ctx context.Context, cs []*models.Contact) error {
	m.contacts = append(m.contacts, cs...)
	return nil
}

func (m *memStore) InsertPropertyContacts(ctx context.Context, ls []*models.PropertyContact) error {
	m.links = append(m.links, ls...)
	return nil
}

func (m *memStore) UpsertLeadPipelines(ctx context.Context, rows []*models.LeadPipeline) error {
	m.pipelines = append(m.pipelines, rows...)
	return nil
}

func (m *memStore) TableCount(ctx context.Context, table string) (int64, error) {
	switch table {
	case "properties":
		return int64(len(m.properties)), nil
	case "distress_events":
		return int64(len(m.events)), nil
	case "lead_pipeline":
		return int64(len(m.pipelines)), nil
	}
	return 0, errors.New("unknown table")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sampleListings() []*models.LegacyListing {
	a := &models.LegacyListing{ID: 1, Address: "123 Main St, Nashville", City: "Nashville", SaleDate: "2026-09-01", Source: "tn_ledger"}
	b := &models.LegacyListing{ID: 2, Address: "123 main street, nashville", City: "Nashville", SaleDate: "2026-09-08", Source: "auction_com"}
	c := &models.LegacyListing{ID: 3, Address: "456 Oak Ave, Mt Juliet", City: "Mt Juliet", SaleDate: "2026-09-15", Source: "tn_ledger"}
	b.Phones[0] = "615-555-0100"
	return []*models.LegacyListing{a, b, c}
}

func TestRunApplyEndToEnd(t *testing.T) {
	store := &memStore{legacy: sampleListings()}
	o := NewOrchestrator(store, testRegion(), quietLogger(), true)

	stats, checks, err := o.Run(context.Background())
	require.NoError(t, err)

	// Dedup collapses the two Main St variants into one property while
	// keeping one event per input row.
	assert.Equal(t, 3, stats.LegacyRows)
	assert.Equal(t, 2, stats.UniqueAddresses)
	assert.Len(t, store.properties, 2)
	assert.Len(t, store.events, 3)
	assert.Len(t, store.pipelines, 2)
	assert.Len(t, store.contacts, 1)
	assert.Empty(t, stats.Errors)

	// The phone on row 2 enriches the merged Main St property only.
	stageByID := map[string]string{}
	for _, p := range store.pipelines {
		stageByID[p.PropertyID.String()] = p.Stage
	}
	assert.Equal(t, models.StageEnriched, stageByID[store.properties[0].ID.String()])
	assert.Equal(t, models.StageNew, stageByID[store.properties[1].ID.String()])

	// Both events of the merged group point at the same property.
	assert.Equal(t, store.events[0].PropertyID, store.events[1].PropertyID)
	assert.NotEqual(t, store.events[0].PropertyID, store.events[2].PropertyID)

	for _, c := range checks {
		assert.True(t, c.Passed, "check %q failed: expected %d got %d", c.Name, c.Expected, c.Actual)
	}
}

func TestRunAddressVariantsSameSaleDate(t *testing.T) {
	// Two spellings of one address from the same source and sale date are
	// legal legacy rows; the merge must still yield one event per row, so
	// the events share the full (property, date, source) triple.
	store := &memStore{legacy: []*models.LegacyListing{
		{ID: 1, Address: "123 Main St", City: "Nashville", SaleDate: "2026-09-01", Source: "tn_ledger"},
		{ID: 2, Address: "123 main street", City: "Nashville", SaleDate: "2026-09-01", Source: "tn_ledger"},
	}}
	o := NewOrchestrator(store, testRegion(), quietLogger(), true)

	stats, _, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.UniqueAddresses)
	require.Len(t, store.properties, 1)
	require.Len(t, store.events, 2)

	assert.Equal(t, store.events[0].PropertyID, store.events[1].PropertyID)
	assert.Equal(t, store.events[0].EventDate, store.events[1].EventDate)
	assert.Equal(t, store.events[0].Source, store.events[1].Source)
	assert.NotEqual(t, store.events[0].ID, store.events[1].ID)
}

func TestRunDryRunSkipsWrites(t *testing.T) {
	store := &memStore{legacy: sampleListings()}
	o := NewOrchestrator(store, testRegion(), quietLogger(), false)

	stats, _, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.properties)
	assert.Empty(t, store.events)
	assert.Empty(t, store.pipelines)
	assert.Equal(t, 2, stats.PropertiesCreated)
	assert.Equal(t, 3, stats.DistressEventsCreated)
}

func TestRunDryRunApplyParity(t *testing.T) {
	dry := NewOrchestrator(&memStore{legacy: sampleListings()}, testRegion(), quietLogger(), false)
	dryStats, _, err := dry.Run(context.Background())
	require.NoError(t, err)

	live := NewOrchestrator(&memStore{legacy: sampleListings()}, testRegion(), quietLogger(), true)
	liveStats, _, err := live.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dryStats.UniqueAddresses, liveStats.UniqueAddresses)
	assert.Equal(t, dryStats.PropertiesCreated, liveStats.PropertiesCreated)
	assert.Equal(t, dryStats.DistressEventsCreated, liveStats.DistressEventsCreated)
	assert.Equal(t, dryStats.ContactsCreated, liveStats.ContactsCreated)
	assert.Equal(t, dryStats.LeadPipelineCreated, liveStats.LeadPipelineCreated)
}

func TestRunFetchFailureFatal(t *testing.T) {
	store := &memStore{fetchErr: errors.New("connection refused")}
	o := NewOrchestrator(store, testRegion(), quietLogger(), true)

	_, _, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch legacy listings")
}

func TestRunWriteFailureAborts(t *testing.T) {
	store := &memStore{legacy: sampleListings(), writeErr: errors.New("insert failed")}
	o := NewOrchestrator(store, testRegion(), quietLogger(), true)

	stats, _, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert properties")
	// Fetch and grouping stats are still reported for diagnosis.
	assert.Equal(t, 3, stats.LegacyRows)
}

func TestRenderSummaryIncludesCounts(t *testing.T) {
	stats := &Stats{LegacyRows: 3, UniqueAddresses: 2, PropertiesCreated: 2,
		DistressEventsCreated: 3, LeadPipelineCreated: 2, Errors: []string{"no property for legacy row 9 (x)"}}
	checks := []ValidationCheck{check("properties == unique addresses", 2, 2)}

	out := RenderSummary(stats, checks, true)
	assert.Contains(t, out, "APPLY")
	assert.Contains(t, out, "Legacy rows")
	assert.Contains(t, out, "no property for legacy row 9")
	assert.Contains(t, out, "properties == unique addresses")
}
