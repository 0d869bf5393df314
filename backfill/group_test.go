package backfill

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/models"
)

func TestGroupByAddressMergesVariants(t *testing.T) {
	listings := []*models.LegacyListing{
		{ID: 1, Address: "123 Main St, Nashville"},
		{ID: 2, Address: "456 Oak Ave, Mt Juliet"},
		{ID: 3, Address: "123 main street, nashville"},
	}

	groups := GroupByAddress(listings)
	require.Len(t, groups, 2)

	// First-seen key order, first-seen representative.
	assert.Equal(t, int64(1), groups[0].Representative.ID)
	assert.Len(t, groups[0].Members, 2)
	assert.Equal(t, int64(3), groups[0].Members[1].ID)
	assert.Equal(t, int64(2), groups[1].Representative.ID)
}

func TestGroupByAddressCompleteness(t *testing.T) {
	var listings []*models.LegacyListing
	for i := 0; i < 50; i++ {
		listings = append(listings, &models.LegacyListing{
			ID:      int64(i),
			Address: fmt.Sprintf("%d Elm St", i%7),
		})
	}

	groups := GroupByAddress(listings)
	total := 0
	seen := make(map[int64]bool)
	for _, g := range groups {
		total += len(g.Members)
		for _, m := range g.Members {
			assert.False(t, seen[m.ID], "listing %d appears in two groups", m.ID)
			seen[m.ID] = true
		}
	}
	assert.Equal(t, len(listings), total)
}

func TestGroupByAddressEmptyKey(t *testing.T) {
	listings := []*models.LegacyListing{
		{ID: 1, Address: ""},
		{ID: 2, Address: "   "},
		{ID: 3, Address: "9 Pine Rd"},
	}

	groups := GroupByAddress(listings)
	require.Len(t, groups, 2)
	assert.Equal(t, "", groups[0].Key)
	assert.Len(t, groups[0].Members, 2)
}

func TestGroupByAddressEmptyInput(t *testing.T) {
	assert.Empty(t, GroupByAddress(nil))
}
