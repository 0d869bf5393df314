package backfill

import (
	"leadpipe/identity"
	"leadpipe/models"
)

// AddressGroup is the set of legacy rows that normalize to the same address
// key. The first-seen row is the representative used to synthesize the
// Property.
type AddressGroup struct {
	Key            string
	Representative *models.LegacyListing
	Members        []*models.LegacyListing
}

// GroupByAddress partitions listings by normalized address, preserving
// first-seen order of both keys and members. No listing is dropped: rows
// whose address normalizes to "" share a single empty-key group.
func GroupByAddress(listings []*models.LegacyListing) []*AddressGroup {
	var groups []*AddressGroup
	byKey := make(map[string]*AddressGroup)

	for _, listing := range listings {
		key := identity.NormalizeAddress(listing.Address)
		group, ok := byKey[key]
		if !ok {
			group = &AddressGroup{Key: key, Representative: listing}
			byKey[key] = group
			groups = append(groups, group)
		}
		group.Members = append(group.Members, listing)
	}

	return groups
}
