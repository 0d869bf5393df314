package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadpipe/identity"
	"leadpipe/models"
)

// PostgresStore talks to the Supabase Postgres holding both the legacy
// foreclosure_data table and the normalized vNext tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// InitSchema creates the vNext tables and retrofits the fingerprint column
// onto the legacy table so the mirror writer can address rows by dedup key.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS foreclosure_data (
			id BIGSERIAL PRIMARY KEY,
			address TEXT NOT NULL,
			city TEXT,
			county TEXT,
			date TEXT,
			time TEXT,
			source TEXT,
			firm TEXT,
			within_30min BOOLEAN,
			distance_miles DOUBLE PRECISION,
			lat DOUBLE PRECISION,
			lon DOUBLE PRECISION,
			owner_phone_1 TEXT, owner_phone_2 TEXT, owner_phone_3 TEXT, owner_phone_4 TEXT, owner_phone_5 TEXT,
			owner_email_1 TEXT, owner_email_2 TEXT, owner_email_3 TEXT, owner_email_4 TEXT, owner_email_5 TEXT,
			owner_1_first_name TEXT, owner_1_last_name TEXT,
			owner_2_first_name TEXT, owner_2_last_name TEXT,
			fingerprint TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_foreclosure_dedup
			ON foreclosure_data (source, address, date)`,
		`CREATE INDEX IF NOT EXISTS idx_foreclosure_fingerprint
			ON foreclosure_data (fingerprint)`,
		`CREATE TABLE IF NOT EXISTS properties (
			id UUID PRIMARY KEY,
			fingerprint TEXT UNIQUE NOT NULL,
			full_address TEXT NOT NULL,
			street TEXT,
			city TEXT,
			state TEXT,
			county TEXT,
			lat DOUBLE PRECISION,
			lon DOUBLE PRECISION,
			distance_to_nashville DOUBLE PRECISION,
			distance_to_mt_juliet DOUBLE PRECISION,
			near_nashville BOOLEAN NOT NULL DEFAULT FALSE,
			near_mt_juliet BOOLEAN NOT NULL DEFAULT FALSE,
			property_type TEXT,
			data_confidence DOUBLE PRECISION,
			status TEXT,
			last_seen_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS distress_events (
			id UUID PRIMARY KEY,
			property_id UUID NOT NULL REFERENCES properties(id),
			event_type TEXT NOT NULL,
			source TEXT,
			event_date TEXT,
			event_time TEXT,
			firm TEXT,
			status TEXT,
			raw_data JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		// The backfill writes one event per legacy row, so (property_id,
		// event_date, source) can legitimately repeat when address variants
		// merge into one property. Plain index only; the live path dedups
		// in InsertDistressEventIfNew.
		`DROP INDEX IF EXISTS idx_distress_dedup`,
		`CREATE INDEX IF NOT EXISTS idx_distress_property_event
			ON distress_events (property_id, event_date, source)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id UUID PRIMARY KEY,
			name_first TEXT,
			name_last TEXT,
			contact_type TEXT,
			phones JSONB NOT NULL DEFAULT '[]',
			emails JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS property_contacts (
			property_id UUID NOT NULL REFERENCES properties(id),
			contact_id UUID NOT NULL REFERENCES contacts(id),
			role TEXT,
			confidence DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (property_id, contact_id)
		)`,
		`CREATE TABLE IF NOT EXISTS lead_pipeline (
			property_id UUID PRIMARY KEY REFERENCES properties(id),
			stage TEXT NOT NULL,
			assigned_to TEXT,
			crm_synced BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// =============================================================================
// Legacy table
// =============================================================================

const legacyColumns = `id, address, city, county, date, time, source, firm,
	within_30min, distance_miles, lat, lon,
	owner_phone_1, owner_phone_2, owner_phone_3, owner_phone_4, owner_phone_5,
	owner_email_1, owner_email_2, owner_email_3, owner_email_4, owner_email_5,
	owner_1_first_name, owner_1_last_name, owner_2_first_name, owner_2_last_name,
	created_at`

// FetchLegacyListings reads the whole legacy table ordered by creation time
// ascending, the order the backfill grouper depends on.
func (s *PostgresStore) FetchLegacyListings(ctx context.Context) ([]*models.LegacyListing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+legacyColumns+` FROM foreclosure_data ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query foreclosure_data: %w", err)
	}
	defer rows.Close()

	var listings []*models.LegacyListing
	for rows.Next() {
		l, err := scanLegacyListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func scanLegacyListing(row pgx.Row) (*models.LegacyListing, error) {
	var l models.LegacyListing
	var city, county, date, saleTime, source, firm *string
	var phones [models.LegacyPhoneSlots]*string
	var emails [models.LegacyEmailSlots]*string
	var names [models.LegacyNameSlots * 2]*string

	err := row.Scan(
		&l.ID, &l.Address, &city, &county, &date, &saleTime, &source, &firm,
		&l.WithinHalfHour, &l.DistanceMiles, &l.Lat, &l.Lon,
		&phones[0], &phones[1], &phones[2], &phones[3], &phones[4],
		&emails[0], &emails[1], &emails[2], &emails[3], &emails[4],
		&names[0], &names[1], &names[2], &names[3],
		&l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan legacy row: %w", err)
	}

	l.City = deref(city)
	l.County = deref(county)
	l.SaleDate = deref(date)
	l.SaleTime = deref(saleTime)
	l.Source = deref(source)
	l.Firm = deref(firm)
	for i := range phones {
		l.Phones[i] = deref(phones[i])
	}
	for i := range emails {
		l.Emails[i] = deref(emails[i])
	}
	l.Names[0] = models.OwnerName{First: deref(names[0]), Last: deref(names[1])}
	l.Names[1] = models.OwnerName{First: deref(names[2]), Last: deref(names[3])}
	return &l, nil
}

// ListLegacyListings is the paged legacy read path the API serves while the
// frontend still renders the old shape.
func (s *PostgresStore) ListLegacyListings(ctx context.Context, city string, limit, offset int) ([]*models.LegacyListing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+legacyColumns+` FROM foreclosure_data
		WHERE ($1 = '' OR LOWER(city) = LOWER($1))
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, city, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list legacy listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.LegacyListing
	for rows.Next() {
		l, err := scanLegacyListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// UpsertLegacyListing inserts a scraped row into the legacy table, keyed by
// (source, address, date) so re-scrapes of the same sale are idempotent.
// Returns true when a new row was created.
func (s *PostgresStore) UpsertLegacyListing(ctx context.Context, l *models.LegacyListing) (bool, error) {
	var inserted bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO foreclosure_data (
			address, city, county, date, time, source, firm,
			within_30min, distance_miles, lat, lon, fingerprint
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (source, address, date) DO UPDATE SET
			firm = COALESCE(NULLIF(EXCLUDED.firm, ''), foreclosure_data.firm),
			time = COALESCE(NULLIF(EXCLUDED.time, ''), foreclosure_data.time)
		RETURNING (xmax = 0)`,
		l.Address, l.City, l.County, l.SaleDate, l.SaleTime, l.Source, l.Firm,
		l.WithinHalfHour, l.DistanceMiles, l.Lat, l.Lon,
		identity.Fingerprint(l.Address),
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert legacy listing: %w", err)
	}
	return inserted, nil
}

// MirrorContactToLegacy flattens contact data back into the legacy owner
// columns for every row sharing the property's fingerprint. Slots are
// overwritten unconditionally: last skip trace wins, no merge.
func (s *PostgresStore) MirrorContactToLegacy(ctx context.Context, fingerprint string,
	phones [models.LegacyPhoneSlots]string, emails [models.LegacyEmailSlots]string,
	names [models.LegacyNameSlots]models.OwnerName) error {

	_, err := s.pool.Exec(ctx, `
		UPDATE foreclosure_data SET
			owner_phone_1 = $2, owner_phone_2 = $3, owner_phone_3 = $4,
			owner_phone_4 = $5, owner_phone_5 = $6,
			owner_email_1 = $7, owner_email_2 = $8, owner_email_3 = $9,
			owner_email_4 = $10, owner_email_5 = $11,
			owner_1_first_name = $12, owner_1_last_name = $13,
			owner_2_first_name = $14, owner_2_last_name = $15
		WHERE fingerprint = $1`,
		fingerprint,
		phones[0], phones[1], phones[2], phones[3], phones[4],
		emails[0], emails[1], emails[2], emails[3], emails[4],
		names[0].First, names[0].Last, names[1].First, names[1].Last,
	)
	if err != nil {
		return fmt.Errorf("mirror contact to legacy: %w", err)
	}
	return nil
}

// =============================================================================
// vNext bulk writes (backfill)
// =============================================================================

func (s *PostgresStore) InsertProperties(ctx context.Context, properties []*models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"properties"},
		[]string{"id", "fingerprint", "full_address", "street", "city", "state", "county",
			"lat", "lon", "distance_to_nashville", "distance_to_mt_juliet",
			"near_nashville", "near_mt_juliet", "property_type", "data_confidence",
			"status", "last_seen_at", "created_at", "updated_at"},
		pgx.CopyFromSlice(len(properties), func(i int) ([]any, error) {
			p := properties[i]
			return []any{p.ID, p.Fingerprint, p.FullAddress, p.Street, p.City, p.State, p.County,
				p.Lat, p.Lon, p.DistanceToNashville, p.DistanceToMtJuliet,
				p.NearNashville, p.NearMtJuliet, p.PropertyType, p.DataConfidence,
				p.Status, p.LastSeenAt, p.CreatedAt, p.UpdatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy properties: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertDistressEvents(ctx context.Context, events []*models.DistressEvent) error {
	if len(events) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"distress_events"},
		[]string{"id", "property_id", "event_type", "source", "event_date", "event_time",
			"firm", "status", "raw_data", "created_at"},
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			e := events[i]
			return []any{e.ID, e.PropertyID, e.EventType, e.Source, e.EventDate, e.EventTime,
				e.Firm, e.Status, e.RawData, e.CreatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy distress events: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertContacts(ctx context.Context, contacts []*models.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"contacts"},
		[]string{"id", "name_first", "name_last", "contact_type", "phones", "emails", "created_at"},
		pgx.CopyFromSlice(len(contacts), func(i int) ([]any, error) {
			c := contacts[i]
			phones, err := json.Marshal(c.Phones)
			if err != nil {
				return nil, err
			}
			emails, err := json.Marshal(c.Emails)
			if err != nil {
				return nil, err
			}
			return []any{c.ID, c.NameFirst, c.NameLast, c.ContactType, phones, emails, c.CreatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy contacts: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertPropertyContacts(ctx context.Context, links []*models.PropertyContact) error {
	if len(links) == 0 {
		return nil
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"property_contacts"},
		[]string{"property_id", "contact_id", "role", "confidence", "created_at"},
		pgx.CopyFromSlice(len(links), func(i int) ([]any, error) {
			l := links[i]
			return []any{l.PropertyID, l.ContactID, l.Role, l.Confidence, l.CreatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy property contacts: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertLeadPipelines(ctx context.Context, rows []*models.LeadPipeline) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO lead_pipeline (property_id, stage, assigned_to, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (property_id) DO UPDATE SET
				stage = EXCLUDED.stage,
				updated_at = EXCLUDED.updated_at`,
			r.PropertyID, r.Stage, r.AssignedTo, r.UpdatedAt)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert lead pipeline: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) TableCount(ctx context.Context, table string) (int64, error) {
	allowed := map[string]bool{
		"foreclosure_data": true, "properties": true, "distress_events": true,
		"contacts": true, "property_contacts": true, "lead_pipeline": true,
	}
	if !allowed[table] {
		return 0, fmt.Errorf("unknown table: %s", table)
	}
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count)
	return count, err
}

// =============================================================================
// vNext single-row operations (live scrape + skip-trace paths)
// =============================================================================

const propertyColumns = `id, fingerprint, full_address, street, city, state, county,
	lat, lon, distance_to_nashville, distance_to_mt_juliet,
	near_nashville, near_mt_juliet, property_type, data_confidence,
	status, last_seen_at, created_at, updated_at`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID, &p.Fingerprint, &p.FullAddress, &p.Street, &p.City, &p.State, &p.County,
		&p.Lat, &p.Lon, &p.DistanceToNashville, &p.DistanceToMtJuliet,
		&p.NearNashville, &p.NearMtJuliet, &p.PropertyType, &p.DataConfidence,
		&p.Status, &p.LastSeenAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) GetPropertyByFingerprint(ctx context.Context, fingerprint string) (*models.Property, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE fingerprint = $1`, fingerprint)
	p, err := scanProperty(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get property by fingerprint: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	p, err := scanProperty(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get property by id: %w", err)
	}
	return p, nil
}

// UpsertProperty inserts a property or refreshes an existing one keyed by
// fingerprint. Existing rows are enriched, never replaced: only status and
// last_seen_at move on conflict.
func (s *PostgresStore) UpsertProperty(ctx context.Context, p *models.Property) (bool, error) {
	var inserted bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO properties (`+propertyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (fingerprint) DO UPDATE SET
			status = EXCLUDED.status,
			last_seen_at = EXCLUDED.last_seen_at,
			updated_at = NOW()
		RETURNING (xmax = 0)`,
		p.ID, p.Fingerprint, p.FullAddress, p.Street, p.City, p.State, p.County,
		p.Lat, p.Lon, p.DistanceToNashville, p.DistanceToMtJuliet,
		p.NearNashville, p.NearMtJuliet, p.PropertyType, p.DataConfidence,
		p.Status, p.LastSeenAt, p.CreatedAt, p.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert property: %w", err)
	}
	return inserted, nil
}

// InsertDistressEventIfNew creates the event unless one already exists for
// the same (property, event_date, source). New sale dates produce new
// events; existing events are never mutated. Dedup is a NOT EXISTS guard
// rather than a unique arbiter because backfilled events may repeat the
// triple.
func (s *PostgresStore) InsertDistressEventIfNew(ctx context.Context, e *models.DistressEvent) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO distress_events (
			id, property_id, event_type, source, event_date, event_time,
			firm, status, raw_data, created_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		WHERE NOT EXISTS (
			SELECT 1 FROM distress_events
			WHERE property_id = $2 AND event_date = $5 AND source = $4
		)`,
		e.ID, e.PropertyID, e.EventType, e.Source, e.EventDate, e.EventTime,
		e.Firm, e.Status, e.RawData, e.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert distress event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) InsertContact(ctx context.Context, c *models.Contact) error {
	phones, err := json.Marshal(c.Phones)
	if err != nil {
		return err
	}
	emails, err := json.Marshal(c.Emails)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO contacts (id, name_first, name_last, contact_type, phones, emails, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.NameFirst, c.NameLast, c.ContactType, phones, emails, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertPropertyContact(ctx context.Context, l *models.PropertyContact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO property_contacts (property_id, contact_id, role, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (property_id, contact_id) DO NOTHING`,
		l.PropertyID, l.ContactID, l.Role, l.Confidence, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert property contact: %w", err)
	}
	return nil
}

// EnsurePipeline creates a stage-new pipeline row if the property has none.
// Existing rows keep their stage so re-scrapes never downgrade enriched
// leads.
func (s *PostgresStore) EnsurePipeline(ctx context.Context, propertyID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO lead_pipeline (property_id, stage, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (property_id) DO NOTHING`,
		propertyID, models.StageNew,
	)
	if err != nil {
		return fmt.Errorf("ensure pipeline: %w", err)
	}
	return nil
}

// UpsertPipelineStage moves a property's pipeline row to the given stage,
// creating it if missing. The crm_synced flag resets so stage changes get
// re-pushed.
func (s *PostgresStore) UpsertPipelineStage(ctx context.Context, propertyID uuid.UUID, stage string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO lead_pipeline (property_id, stage, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (property_id) DO UPDATE SET
			stage = EXCLUDED.stage,
			crm_synced = FALSE,
			updated_at = NOW()`,
		propertyID, stage,
	)
	if err != nil {
		return fmt.Errorf("upsert pipeline stage: %w", err)
	}
	return nil
}

// =============================================================================
// Reads for the API and workers
// =============================================================================

func (s *PostgresStore) ListProperties(ctx context.Context, city string, limit, offset int) ([]*models.Property, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+propertyColumns+` FROM properties
		WHERE ($1 = '' OR LOWER(city) = LOWER($1))
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, city, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (s *PostgresStore) ListEventsForProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.DistressEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, property_id, event_type, source, event_date, event_time,
			firm, status, raw_data, created_at
		FROM distress_events
		WHERE property_id = $1
		ORDER BY created_at ASC`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*models.DistressEvent
	for rows.Next() {
		var e models.DistressEvent
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.EventType, &e.Source, &e.EventDate,
			&e.EventTime, &e.Firm, &e.Status, &e.RawData, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (s *PostgresStore) ListContactsForProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Contact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name_first, c.name_last, c.contact_type, c.phones, c.emails, c.created_at
		FROM contacts c
		JOIN property_contacts pc ON pc.contact_id = c.id
		WHERE pc.property_id = $1
		ORDER BY c.created_at ASC`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		var c models.Contact
		var phones, emails []byte
		if err := rows.Scan(&c.ID, &c.NameFirst, &c.NameLast, &c.ContactType, &phones, &emails, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(phones, &c.Phones); err != nil {
			return nil, fmt.Errorf("decode phones: %w", err)
		}
		if err := json.Unmarshal(emails, &c.Emails); err != nil {
			return nil, fmt.Errorf("decode emails: %w", err)
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

// Lead joins a pipeline row with its property for API listings.
type Lead struct {
	Property *models.Property     `json:"property"`
	Pipeline *models.LeadPipeline `json:"pipeline"`
}

func (s *PostgresStore) ListLeads(ctx context.Context, stage string, limit, offset int) ([]*Lead, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.fingerprint, p.full_address, p.street, p.city, p.state, p.county,
			p.lat, p.lon, p.distance_to_nashville, p.distance_to_mt_juliet,
			p.near_nashville, p.near_mt_juliet, p.property_type, p.data_confidence,
			p.status, p.last_seen_at, p.created_at, p.updated_at,
			lp.stage, lp.assigned_to, lp.updated_at
		FROM lead_pipeline lp
		JOIN properties p ON p.id = lp.property_id
		WHERE ($1 = '' OR lp.stage = $1)
		ORDER BY lp.updated_at DESC
		LIMIT $2 OFFSET $3`, stage, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []*Lead
	for rows.Next() {
		var p models.Property
		var lp models.LeadPipeline
		if err := rows.Scan(
			&p.ID, &p.Fingerprint, &p.FullAddress, &p.Street, &p.City, &p.State, &p.County,
			&p.Lat, &p.Lon, &p.DistanceToNashville, &p.DistanceToMtJuliet,
			&p.NearNashville, &p.NearMtJuliet, &p.PropertyType, &p.DataConfidence,
			&p.Status, &p.LastSeenAt, &p.CreatedAt, &p.UpdatedAt,
			&lp.Stage, &lp.AssignedTo, &lp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lp.PropertyID = p.ID
		leads = append(leads, &Lead{Property: &p, Pipeline: &lp})
	}
	return leads, rows.Err()
}

// PipelineStats summarizes the funnel for the dashboard.
type PipelineStats struct {
	TotalProperties int64 `json:"total_properties"`
	TotalEvents     int64 `json:"total_events"`
	TotalContacts   int64 `json:"total_contacts"`
	StageNew        int64 `json:"stage_new"`
	StageEnriched   int64 `json:"stage_enriched"`
	LegacyRows      int64 `json:"legacy_rows"`
}

func (s *PostgresStore) GetPipelineStats(ctx context.Context) (*PipelineStats, error) {
	var stats PipelineStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM properties),
			(SELECT COUNT(*) FROM distress_events),
			(SELECT COUNT(*) FROM contacts),
			(SELECT COUNT(*) FROM lead_pipeline WHERE stage = 'new'),
			(SELECT COUNT(*) FROM lead_pipeline WHERE stage = 'enriched'),
			(SELECT COUNT(*) FROM foreclosure_data)`).Scan(
		&stats.TotalProperties, &stats.TotalEvents, &stats.TotalContacts,
		&stats.StageNew, &stats.StageEnriched, &stats.LegacyRows,
	)
	if err != nil {
		return nil, fmt.Errorf("pipeline stats: %w", err)
	}
	return &stats, nil
}

// ListPropertiesNeedingEnrichment returns stage-new properties with no
// linked contacts, oldest first, for the enrichment worker.
func (s *PostgresStore) ListPropertiesNeedingEnrichment(ctx context.Context, limit int) ([]*models.Property, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+propertyColumns+` FROM properties p
		WHERE EXISTS (
			SELECT 1 FROM lead_pipeline lp
			WHERE lp.property_id = p.id AND lp.stage = 'new'
		)
		AND NOT EXISTS (
			SELECT 1 FROM property_contacts pc WHERE pc.property_id = p.id
		)
		ORDER BY p.created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list properties needing enrichment: %w", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// ListLeadsForCRMSync returns enriched pipeline rows not yet pushed to the
// CRM.
func (s *PostgresStore) ListLeadsForCRMSync(ctx context.Context, limit int) ([]*Lead, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.fingerprint, p.full_address, p.street, p.city, p.state, p.county,
			p.lat, p.lon, p.distance_to_nashville, p.distance_to_mt_juliet,
			p.near_nashville, p.near_mt_juliet, p.property_type, p.data_confidence,
			p.status, p.last_seen_at, p.created_at, p.updated_at,
			lp.stage, lp.assigned_to, lp.updated_at
		FROM lead_pipeline lp
		JOIN properties p ON p.id = lp.property_id
		WHERE lp.stage = 'enriched' AND lp.crm_synced = FALSE
		ORDER BY lp.updated_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list leads for crm sync: %w", err)
	}
	defer rows.Close()

	var leads []*Lead
	for rows.Next() {
		var p models.Property
		var lp models.LeadPipeline
		if err := rows.Scan(
			&p.ID, &p.Fingerprint, &p.FullAddress, &p.Street, &p.City, &p.State, &p.County,
			&p.Lat, &p.Lon, &p.DistanceToNashville, &p.DistanceToMtJuliet,
			&p.NearNashville, &p.NearMtJuliet, &p.PropertyType, &p.DataConfidence,
			&p.Status, &p.LastSeenAt, &p.CreatedAt, &p.UpdatedAt,
			&lp.Stage, &lp.AssignedTo, &lp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lp.PropertyID = p.ID
		leads = append(leads, &Lead{Property: &p, Pipeline: &lp})
	}
	return leads, rows.Err()
}

func (s *PostgresStore) MarkLeadCRMSynced(ctx context.Context, propertyID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE lead_pipeline SET crm_synced = TRUE WHERE property_id = $1`, propertyID)
	return err
}

// ListScheduledEvents returns scheduled distress events for the healthcheck
// worker to expire once their sale date has passed.
func (s *PostgresStore) ListScheduledEvents(ctx context.Context) ([]*models.DistressEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, property_id, event_type, source, event_date, event_time,
			firm, status, raw_data, created_at
		FROM distress_events
		WHERE status = $1`, models.EventStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("list scheduled events: %w", err)
	}
	defer rows.Close()

	var events []*models.DistressEvent
	for rows.Next() {
		var e models.DistressEvent
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.EventType, &e.Source, &e.EventDate,
			&e.EventTime, &e.Firm, &e.Status, &e.RawData, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (s *PostgresStore) MarkEventsExpired(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE distress_events SET status = $1 WHERE id = ANY($2)`,
		models.EventStatusExpired, ids)
	if err != nil {
		return 0, fmt.Errorf("mark events expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkStaleProperties flags properties not seen by any scrape since the
// cutoff.
func (s *PostgresStore) MarkStaleProperties(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE properties SET status = $1, updated_at = NOW()
		WHERE status = $2 AND last_seen_at IS NOT NULL AND last_seen_at < $3`,
		models.PropertyStatusStale, models.PropertyStatusActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark stale properties: %w", err)
	}
	return tag.RowsAffected(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
