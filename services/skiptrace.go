package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leadpipe/config"
	"leadpipe/models"
	"leadpipe/storage"
)

const skipTraceLinkConfidence = 0.8

// TraceResult is what a skip trace provider returns for one address.
type TraceResult struct {
	Phones []string
	Emails []string
	Names  []models.OwnerName
}

// HasData reports whether the lookup produced anything reachable. Names
// alone do not count.
func (r *TraceResult) HasData() bool {
	return len(r.Phones) > 0 || len(r.Emails) > 0
}

// TraceClient looks up owner contact data for a property address.
type TraceClient interface {
	Lookup(ctx context.Context, property *models.Property) (*TraceResult, error)
}

// HTTPTraceClient calls a hosted skip trace API.
type HTTPTraceClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPTraceClient(cfg config.SkipTraceConfig, client *http.Client) *HTTPTraceClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTraceClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

func (c *HTTPTraceClient) Lookup(ctx context.Context, property *models.Property) (*TraceResult, error) {
	payload := map[string]string{
		"address": property.FullAddress,
		"city":    property.City,
		"state":   property.State,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("skip trace error %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Phones []string `json:"phones"`
		Emails []string `json:"emails"`
		Owners []struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"owners"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	trace := &TraceResult{Phones: result.Phones, Emails: result.Emails}
	for _, o := range result.Owners {
		trace.Names = append(trace.Names, models.OwnerName{First: o.FirstName, Last: o.LastName})
	}
	return trace, nil
}

// ContactSink receives the contacts produced by a skip trace. Both schemas
// are written through this one interface so the two paths cannot drift: the
// service always writes to every sink it was built with.
type ContactSink interface {
	WriteContacts(ctx context.Context, property *models.Property, contacts []*models.Contact, links []*models.PropertyContact) error
}

// NormalizedSink persists contacts into the contacts/property_contacts
// tables.
type NormalizedSink struct {
	store *storage.PostgresStore
}

func NewNormalizedSink(store *storage.PostgresStore) *NormalizedSink {
	return &NormalizedSink{store: store}
}

func (s *NormalizedSink) WriteContacts(ctx context.Context, property *models.Property, contacts []*models.Contact, links []*models.PropertyContact) error {
	for _, c := range contacts {
		if err := s.store.InsertContact(ctx, c); err != nil {
			return err
		}
	}
	for _, l := range links {
		if err := s.store.InsertPropertyContact(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// LegacyMirrorSink flattens contacts back into the fixed owner columns of
// the legacy table. Slots past the column count are dropped; a repeat trace
// overwrites all slots.
type LegacyMirrorSink struct {
	store *storage.PostgresStore
}

func NewLegacyMirrorSink(store *storage.PostgresStore) *LegacyMirrorSink {
	return &LegacyMirrorSink{store: store}
}

func (s *LegacyMirrorSink) WriteContacts(ctx context.Context, property *models.Property, contacts []*models.Contact, links []*models.PropertyContact) error {
	phones, emails, names := FlattenContacts(contacts)
	return s.store.MirrorContactToLegacy(ctx, property.Fingerprint, phones, emails, names)
}

// FlattenContacts packs contacts into the fixed legacy slot layout. Values
// are deduplicated in first-seen order; overflow past the slot counts is
// dropped.
func FlattenContacts(contacts []*models.Contact) (
	phones [models.LegacyPhoneSlots]string,
	emails [models.LegacyEmailSlots]string,
	names [models.LegacyNameSlots]models.OwnerName,
) {
	seenPhones := map[string]bool{}
	seenEmails := map[string]bool{}
	pi, ei, ni := 0, 0, 0
	for _, c := range contacts {
		if ni < len(names) && (c.NameFirst != "" || c.NameLast != "") {
			names[ni] = models.OwnerName{First: c.NameFirst, Last: c.NameLast}
			ni++
		}
		for _, p := range c.Phones {
			if pi < len(phones) && !seenPhones[p.Number] {
				phones[pi] = p.Number
				seenPhones[p.Number] = true
				pi++
			}
		}
		for _, e := range c.Emails {
			if ei < len(emails) && !seenEmails[e.Email] {
				emails[ei] = e.Email
				seenEmails[e.Email] = true
				ei++
			}
		}
	}
	return phones, emails, names
}

// NoopSink satisfies ContactSink when the legacy mirror is switched off.
type NoopSink struct{}

func (NoopSink) WriteContacts(ctx context.Context, property *models.Property, contacts []*models.Contact, links []*models.PropertyContact) error {
	return nil
}

// NewMirrorSink picks the legacy mirror implementation from the feature
// flags. Callers always get a sink; only its behavior changes.
func NewMirrorSink(store *storage.PostgresStore, flags config.FeatureFlags) ContactSink {
	if flags.UseLegacySchema {
		return NewLegacyMirrorSink(store)
	}
	return NoopSink{}
}

// pipelineStore is the slice of the Postgres store the skip trace service
// needs.
type pipelineStore interface {
	UpsertPipelineStage(ctx context.Context, propertyID uuid.UUID, stage string) error
}

// SkipTraceService runs owner lookups and writes the results through every
// configured sink from a single call site.
type SkipTraceService struct {
	client TraceClient
	store  pipelineStore
	sinks  []ContactSink
	logger *logrus.Logger
	now    func() time.Time
}

func NewSkipTraceService(client TraceClient, store pipelineStore, logger *logrus.Logger, sinks ...ContactSink) *SkipTraceService {
	return &SkipTraceService{
		client: client,
		store:  store,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// EnrichResult is the outcome of one skip trace.
type EnrichResult struct {
	Contacts int
	NoData   bool
}

// Enrich looks up the property's owner, persists whatever came back, and
// advances the pipeline stage. A lookup with no reachable data is not an
// error; the property simply stays at its current stage.
func (s *SkipTraceService) Enrich(ctx context.Context, property *models.Property) (*EnrichResult, error) {
	trace, err := s.client.Lookup(ctx, property)
	if err != nil {
		return nil, fmt.Errorf("skip trace lookup: %w", err)
	}

	if !trace.HasData() {
		s.logger.WithField("address", property.FullAddress).Debug("Skip trace returned no contact data")
		return &EnrichResult{NoData: true}, nil
	}

	contacts, links := s.buildContacts(trace, property.ID)
	for _, sink := range s.sinks {
		if err := sink.WriteContacts(ctx, property, contacts, links); err != nil {
			return nil, fmt.Errorf("write contacts: %w", err)
		}
	}

	if err := s.store.UpsertPipelineStage(ctx, property.ID, models.StageEnriched); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"address":  property.FullAddress,
		"contacts": len(contacts),
	}).Info("Property enriched")

	return &EnrichResult{Contacts: len(contacts)}, nil
}

// buildContacts makes one contact per owner name, each carrying the full
// phone/email set since the provider does not attribute them per person. A
// nameless result still yields one anonymous contact.
func (s *SkipTraceService) buildContacts(trace *TraceResult, propertyID uuid.UUID) ([]*models.Contact, []*models.PropertyContact) {
	now := s.now()

	var phones []models.ContactPhone
	for i, p := range trace.Phones {
		label := "primary"
		if i > 0 {
			label = "alternate"
		}
		phones = append(phones, models.ContactPhone{Number: p, Label: label, Source: "skip_trace"})
	}
	var emails []models.ContactEmail
	for i, e := range trace.Emails {
		label := "primary"
		if i > 0 {
			label = "alternate"
		}
		emails = append(emails, models.ContactEmail{Email: e, Label: label, Source: "skip_trace"})
	}

	names := trace.Names
	if len(names) == 0 {
		names = []models.OwnerName{{}}
	}

	var contacts []*models.Contact
	var links []*models.PropertyContact
	for _, name := range names {
		c := &models.Contact{
			ID:          uuid.New(),
			NameFirst:   name.First,
			NameLast:    name.Last,
			ContactType: models.ContactTypeIndividual,
			Phones:      phones,
			Emails:      emails,
			CreatedAt:   now,
		}
		contacts = append(contacts, c)
		links = append(links, &models.PropertyContact{
			PropertyID: propertyID,
			ContactID:  c.ID,
			Role:       models.RoleSkipTrace,
			Confidence: skipTraceLinkConfidence,
			CreatedAt:  now,
		})
	}
	return contacts, links
}
