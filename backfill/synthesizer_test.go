package backfill

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/config"
	"leadpipe/geo"
	"leadpipe/models"
)

func testRegion() config.RegionConfig {
	return config.RegionConfig{
		State: "TN",
		Hubs: []geo.Hub{
			{ID: "nashville", Name: "Nashville", Lat: 36.1627, Lon: -86.7816},
			{ID: "mt_juliet", Name: "Mt. Juliet", Lat: 36.2001, Lon: -86.5186},
		},
		DriveTimeCutoff: 30,
	}
}

func TestBuildPropertyFromRepresentative(t *testing.T) {
	synth := NewSynthesizer(testRegion())
	group := &AddressGroup{
		Key: "123 main nashville",
		Representative: &models.LegacyListing{
			ID: 1, Address: "123 Main St, Nashville", City: "Nashville", County: "Davidson",
		},
	}

	p := synth.BuildProperty(group)
	assert.Equal(t, "123 Main St, Nashville", p.FullAddress)
	assert.Equal(t, "Nashville", p.City)
	assert.Equal(t, "TN", p.State)
	assert.Equal(t, "Davidson", p.County)
	assert.Equal(t, defaultPropertyType, p.PropertyType)
	assert.Equal(t, migratedDataConfidence, p.DataConfidence)
	assert.NotEmpty(t, p.Fingerprint)
	// No coordinates: proximity must fail safe.
	assert.Nil(t, p.DistanceToNashville)
	assert.Nil(t, p.DistanceToMtJuliet)
	assert.False(t, p.NearNashville)
	assert.False(t, p.NearMtJuliet)
}

func TestBuildPropertyProximity(t *testing.T) {
	synth := NewSynthesizer(testRegion())
	lat, lon := 36.17, -86.78
	group := &AddressGroup{
		Key: "10 broadway nashville",
		Representative: &models.LegacyListing{
			ID: 1, Address: "10 Broadway, Nashville", Lat: &lat, Lon: &lon,
		},
	}

	p := synth.BuildProperty(group)
	require.NotNil(t, p.DistanceToNashville)
	assert.Less(t, *p.DistanceToNashville, 2.0)
	assert.True(t, p.NearNashville)
	require.NotNil(t, p.DistanceToMtJuliet)
}

func TestBuildEventPreservesRawData(t *testing.T) {
	synth := NewSynthesizer(testRegion())
	within := true
	dist := 12.5
	listing := &models.LegacyListing{
		ID: 42, Address: "123 Main St", City: "Nashville", County: "Davidson",
		SaleDate: "2026-09-15", SaleTime: "10:00", Source: "tn_ledger", Firm: "Smith & Assoc.",
		WithinHalfHour: &within, DistanceMiles: &dist,
	}

	pid := uuid.New()
	ev := synth.BuildEvent(listing, pid)
	assert.Equal(t, pid, ev.PropertyID)
	assert.Equal(t, models.EventTypeForeclosure, ev.EventType)
	assert.Equal(t, "2026-09-15", ev.EventDate)
	assert.Equal(t, "tn_ledger", ev.Source)
	assert.Equal(t, models.EventStatusScheduled, ev.Status)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(ev.RawData, &raw))
	assert.Equal(t, float64(42), raw["legacy_id"])
	assert.Equal(t, true, raw["within_30min"])
	assert.Equal(t, 12.5, raw["distance_miles"])
	assert.Equal(t, "Smith & Assoc.", raw["firm"])
}

func TestBuildContactsSinglePhone(t *testing.T) {
	synth := NewSynthesizer(testRegion())
	listing := &models.LegacyListing{ID: 1, Address: "123 Main St"}
	listing.Phones[0] = "615-555-0100"

	contacts, links := synth.BuildContacts(listing, uuid.New())
	require.Len(t, contacts, 1)
	require.Len(t, links, 1)
	assert.Len(t, contacts[0].Phones, 1)
	assert.Empty(t, contacts[0].Emails)
	assert.Equal(t, "615-555-0100", contacts[0].Phones[0].Number)
	assert.Equal(t, "", contacts[0].NameFirst)
	assert.Equal(t, models.RoleSkipTrace, links[0].Role)
	assert.Equal(t, skipTraceLinkConfidence, links[0].Confidence)
}

func TestBuildContactsPerNameSlot(t *testing.T) {
	synth := NewSynthesizer(testRegion())
	listing := &models.LegacyListing{ID: 1, Address: "123 Main St"}
	listing.Phones[0] = "615-555-0100"
	listing.Phones[2] = "615-555-0101"
	listing.Emails[0] = "owner@example.com"
	listing.Names[0] = models.OwnerName{First: "Jane", Last: "Doe"}
	listing.Names[1] = models.OwnerName{First: "John", Last: "Doe"}

	contacts, links := synth.BuildContacts(listing, uuid.New())
	require.Len(t, contacts, 2)
	require.Len(t, links, 2)

	// Both contacts carry the full phone/email set.
	for _, c := range contacts {
		assert.Len(t, c.Phones, 2)
		assert.Len(t, c.Emails, 1)
	}
	assert.Equal(t, "Jane", contacts[0].NameFirst)
	assert.Equal(t, "John", contacts[1].NameFirst)
	assert.Equal(t, "primary", contacts[0].Phones[0].Label)
	assert.Equal(t, "alternate", contacts[0].Phones[1].Label)
}

func TestBuildContactsNoContactData(t *testing.T) {
	synth := NewSynthesizer(testRegion())
	listing := &models.LegacyListing{ID: 1, Address: "123 Main St"}
	listing.Names[0] = models.OwnerName{First: "Jane", Last: "Doe"} // name alone is not enough

	contacts, links := synth.BuildContacts(listing, uuid.New())
	assert.Empty(t, contacts)
	assert.Empty(t, links)
}

func TestBuildPipelineStage(t *testing.T) {
	synth := NewSynthesizer(testRegion())
	pid := uuid.New()

	assert.Equal(t, models.StageNew, synth.BuildPipeline(pid, false).Stage)
	assert.Equal(t, models.StageEnriched, synth.BuildPipeline(pid, true).Stage)
}
