package models

import "time"

// Slot counts on the flat foreclosure_data table. The legacy schema stores
// owner contact info in fixed-width columns (owner_phone_1..5 etc.), so the
// in-memory row uses arrays of the same arity instead of string-keyed column
// lookups.
const (
	LegacyPhoneSlots = 5
	LegacyEmailSlots = 5
	LegacyNameSlots  = 2
)

// OwnerName is one first/last name pair from the legacy owner columns.
type OwnerName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// LegacyListing is one row of the flat foreclosure_data table: one row per
// scrape event, denormalized, with owner contact data flattened into fixed
// slots. Immutable input to the backfill pipeline.
type LegacyListing struct {
	ID             int64                      `json:"id" db:"id"`
	Address        string                     `json:"address" db:"address"`
	City           string                     `json:"city" db:"city"`
	County         string                     `json:"county" db:"county"`
	SaleDate       string                     `json:"date" db:"date"`
	SaleTime       string                     `json:"time" db:"time"`
	Source         string                     `json:"source" db:"source"`
	Firm           string                     `json:"firm" db:"firm"`
	WithinHalfHour *bool                      `json:"within_30min" db:"within_30min"`
	DistanceMiles  *float64                   `json:"distance_miles" db:"distance_miles"`
	Lat            *float64                   `json:"lat" db:"lat"`
	Lon            *float64                   `json:"lon" db:"lon"`
	Phones         [LegacyPhoneSlots]string   `json:"owner_phones"`
	Emails         [LegacyEmailSlots]string   `json:"owner_emails"`
	Names          [LegacyNameSlots]OwnerName `json:"owner_names"`
	CreatedAt      time.Time                  `json:"created_at" db:"created_at"`
}

// HasContactData reports whether any owner phone or email slot is populated.
func (l *LegacyListing) HasContactData() bool {
	for _, p := range l.Phones {
		if p != "" {
			return true
		}
	}
	for _, e := range l.Emails {
		if e != "" {
			return true
		}
	}
	return false
}

// PresentNames returns the populated name slots, in slot order.
func (l *LegacyListing) PresentNames() []OwnerName {
	var names []OwnerName
	for _, n := range l.Names {
		if n.First != "" || n.Last != "" {
			names = append(names, n)
		}
	}
	return names
}
