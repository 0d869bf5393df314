package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Property represents a deduplicated physical address (permanent). At most
// one Property exists per normalized-address group; re-scrapes enrich it
// (status, last_seen_at) but never delete it.
type Property struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	Fingerprint         string     `json:"fingerprint" db:"fingerprint"`
	FullAddress         string     `json:"full_address" db:"full_address"`
	Street              string     `json:"street" db:"street"`
	City                string     `json:"city" db:"city"`
	State               string     `json:"state" db:"state"`
	County              string     `json:"county" db:"county"`
	Lat                 *float64   `json:"lat" db:"lat"`
	Lon                 *float64   `json:"lon" db:"lon"`
	DistanceToNashville *float64   `json:"distance_to_nashville" db:"distance_to_nashville"`
	DistanceToMtJuliet  *float64   `json:"distance_to_mt_juliet" db:"distance_to_mt_juliet"`
	NearNashville       bool       `json:"near_nashville" db:"near_nashville"`
	NearMtJuliet        bool       `json:"near_mt_juliet" db:"near_mt_juliet"`
	PropertyType        string     `json:"property_type" db:"property_type"`
	DataConfidence      float64    `json:"data_confidence" db:"data_confidence"`
	Status              string     `json:"status" db:"status"`
	LastSeenAt          *time.Time `json:"last_seen_at" db:"last_seen_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// DistressEvent is one auction/foreclosure occurrence tied to a Property.
// Immutable after creation: a new sale date produces a new event.
type DistressEvent struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	PropertyID uuid.UUID       `json:"property_id" db:"property_id"`
	EventType  string          `json:"event_type" db:"event_type"`
	Source     string          `json:"source" db:"source"`
	EventDate  string          `json:"event_date" db:"event_date"`
	EventTime  string          `json:"event_time" db:"event_time"`
	Firm       string          `json:"firm" db:"firm"`
	Status     string          `json:"status" db:"status"`
	RawData    json.RawMessage `json:"raw_data" db:"raw_data"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// ContactPhone is one entry in a Contact's ordered phone list.
type ContactPhone struct {
	Number   string `json:"number"`
	Label    string `json:"label"`
	Verified bool   `json:"verified"`
	Source   string `json:"source"`
}

// ContactEmail is one entry in a Contact's ordered email list.
type ContactEmail struct {
	Email    string `json:"email"`
	Label    string `json:"label"`
	Verified bool   `json:"verified"`
	Source   string `json:"source"`
}

// Contact is a person/entity extracted from legacy owner columns or returned
// by a skip trace. Phones and emails keep their original slot order.
type Contact struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	NameFirst   string         `json:"name_first" db:"name_first"`
	NameLast    string         `json:"name_last" db:"name_last"`
	ContactType string         `json:"contact_type" db:"contact_type"`
	Phones      []ContactPhone `json:"phones" db:"phones"`
	Emails      []ContactEmail `json:"emails" db:"emails"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// PropertyContact links a Contact to a Property with a role and confidence.
type PropertyContact struct {
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
	ContactID  uuid.UUID `json:"contact_id" db:"contact_id"`
	Role       string    `json:"role" db:"role"`
	Confidence float64   `json:"confidence" db:"confidence"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// LeadPipeline holds the single pipeline row per Property.
type LeadPipeline struct {
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
	Stage      string    `json:"stage" db:"stage"`
	AssignedTo string    `json:"assigned_to" db:"assigned_to"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Event types
const (
	EventTypeForeclosure = "FORECLOSURE"
)

// Event status
const (
	EventStatusScheduled = "scheduled"
	EventStatusExpired   = "expired"
)

// Property status
const (
	PropertyStatusActive = "active"
	PropertyStatusStale  = "stale"
)

// Pipeline stages
const (
	StageNew      = "new"
	StageEnriched = "enriched"
)

// Contact types and roles
const (
	ContactTypeIndividual = "individual"
	RoleSkipTrace         = "skiptrace"
)
