package backfill

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"leadpipe/config"
	"leadpipe/geo"
	"leadpipe/identity"
	"leadpipe/models"
)

// Confidence constants for migrated data. Backfilled rows carry a lower
// data-confidence than live-scraped ones because the legacy table has no
// verification trail.
const (
	migratedDataConfidence  = 0.6
	skipTraceLinkConfidence = 0.8
	defaultPropertyType     = "single_family"
	legacyContactSource     = "legacy_backfill"
)

// Synthesizer maps legacy rows onto the normalized schema: one Property per
// address group, one DistressEvent per legacy row, Contacts and links for
// rows carrying owner data, one pipeline row per Property.
type Synthesizer struct {
	region config.RegionConfig
	now    func() time.Time
}

func NewSynthesizer(region config.RegionConfig) *Synthesizer {
	return &Synthesizer{region: region, now: time.Now}
}

// BuildProperty synthesizes the group's single Property from its
// representative row. State is pinned to the pipeline's target region.
func (s *Synthesizer) BuildProperty(group *AddressGroup) *models.Property {
	rep := group.Representative
	now := s.now()

	p := &models.Property{
		ID:             uuid.New(),
		Fingerprint:    identity.Fingerprint(rep.Address),
		FullAddress:    rep.Address,
		Street:         rep.Address,
		City:           rep.City,
		State:          s.region.State,
		County:         rep.County,
		Lat:            rep.Lat,
		Lon:            rep.Lon,
		PropertyType:   defaultPropertyType,
		DataConfidence: migratedDataConfidence,
		Status:         models.PropertyStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.applyProximity(p)
	return p
}

// applyProximity fills hub distances and in-range flags. Missing coordinates
// leave nil distances and false flags.
func (s *Synthesizer) applyProximity(p *models.Property) {
	for _, hd := range geo.ProximityFor(p.Lat, p.Lon, s.region.Hubs, s.region.DriveTimeCutoff) {
		switch hd.HubID {
		case "nashville":
			p.DistanceToNashville = hd.DistanceMiles
			p.NearNashville = hd.WithinThreshold
		case "mt_juliet":
			p.DistanceToMtJuliet = hd.DistanceMiles
			p.NearMtJuliet = hd.WithinThreshold
		}
	}
}

// legacyRawData preserves the original flat row inside the event for audit.
type legacyRawData struct {
	LegacyID      int64    `json:"legacy_id"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	County        string   `json:"county"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	Source        string   `json:"source"`
	Firm          string   `json:"firm"`
	Within30Min   *bool    `json:"within_30min,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

// BuildEvent synthesizes one DistressEvent for a legacy row, pointing at the
// group's Property and carrying the full original row in raw_data.
func (s *Synthesizer) BuildEvent(listing *models.LegacyListing, propertyID uuid.UUID) *models.DistressEvent {
	raw, _ := json.Marshal(legacyRawData{
		LegacyID:      listing.ID,
		Address:       listing.Address,
		City:          listing.City,
		County:        listing.County,
		Date:          listing.SaleDate,
		Time:          listing.SaleTime,
		Source:        listing.Source,
		Firm:          listing.Firm,
		Within30Min:   listing.WithinHalfHour,
		DistanceMiles: listing.DistanceMiles,
	})

	return &models.DistressEvent{
		ID:         uuid.New(),
		PropertyID: propertyID,
		EventType:  models.EventTypeForeclosure,
		Source:     listing.Source,
		EventDate:  listing.SaleDate,
		EventTime:  listing.SaleTime,
		Firm:       listing.Firm,
		Status:     models.EventStatusScheduled,
		RawData:    raw,
		CreatedAt:  s.now(),
	}
}

// ExtractPhones pulls the populated phone slots in order.
func ExtractPhones(listing *models.LegacyListing) []models.ContactPhone {
	var phones []models.ContactPhone
	for i, num := range listing.Phones {
		if num == "" {
			continue
		}
		label := "primary"
		if i > 0 {
			label = "alternate"
		}
		phones = append(phones, models.ContactPhone{
			Number: num,
			Label:  label,
			Source: legacyContactSource,
		})
	}
	return phones
}

// ExtractEmails pulls the populated email slots in order.
func ExtractEmails(listing *models.LegacyListing) []models.ContactEmail {
	var emails []models.ContactEmail
	for i, addr := range listing.Emails {
		if addr == "" {
			continue
		}
		label := "primary"
		if i > 0 {
			label = "alternate"
		}
		emails = append(emails, models.ContactEmail{
			Email:  addr,
			Label:  label,
			Source: legacyContactSource,
		})
	}
	return emails
}

// BuildContacts synthesizes Contacts and property links for one legacy row.
// A row yields contacts only when at least one phone or email is present:
// one Contact per populated name slot, or a single blank-name Contact when
// no names exist. Every contact carries all of the row's phones and emails.
func (s *Synthesizer) BuildContacts(listing *models.LegacyListing, propertyID uuid.UUID) ([]*models.Contact, []*models.PropertyContact) {
	if !listing.HasContactData() {
		return nil, nil
	}

	phones := ExtractPhones(listing)
	emails := ExtractEmails(listing)

	names := listing.PresentNames()
	if len(names) == 0 {
		names = []models.OwnerName{{}}
	}

	now := s.now()
	var contacts []*models.Contact
	var links []*models.PropertyContact

	for _, name := range names {
		contact := &models.Contact{
			ID:          uuid.New(),
			NameFirst:   name.First,
			NameLast:    name.Last,
			ContactType: models.ContactTypeIndividual,
			Phones:      phones,
			Emails:      emails,
			CreatedAt:   now,
		}
		contacts = append(contacts, contact)
		links = append(links, &models.PropertyContact{
			PropertyID: propertyID,
			ContactID:  contact.ID,
			Role:       models.RoleSkipTrace,
			Confidence: skipTraceLinkConfidence,
			CreatedAt:  now,
		})
	}

	return contacts, links
}

// BuildPipeline synthesizes the Property's single pipeline row.
func (s *Synthesizer) BuildPipeline(propertyID uuid.UUID, enriched bool) *models.LeadPipeline {
	stage := models.StageNew
	if enriched {
		stage = models.StageEnriched
	}
	return &models.LeadPipeline{
		PropertyID: propertyID,
		Stage:      stage,
		UpdatedAt:  s.now(),
	}
}
