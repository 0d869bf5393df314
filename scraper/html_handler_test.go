package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/config"
)

const samplePage = `
<html><body>
<table class="sales">
<thead><tr><th>Address</th><th>City</th><th>Sale Date</th><th>Time</th><th>Firm</th></tr></thead>
<tbody>
<tr><td>123 Main St</td><td>Nashville</td><td>9/15/2026</td><td>10:00 AM</td><td>Smith &amp; Assoc.</td></tr>
<tr><td>456 Oak Ave</td><td>Mt. Juliet</td><td>9/22/2026</td><td>11:00 AM</td><td>Jones Trustee</td></tr>
<tr><td></td><td>Nashville</td><td>9/29/2026</td><td></td><td></td></tr>
<tr><td>789 Elm Dr</td><td>Lebanon</td><td>10/1/2026</td></tr>
</tbody>
</table>
</body></html>`

func htmlTestHandler(maxListings int) *HTMLHandler {
	return NewHTMLHandler(&config.SourceConfig{
		ID:          "tn_ledger",
		County:      "Davidson",
		MaxListings: maxListings,
	}, nil)
}

func TestParseListings(t *testing.T) {
	h := htmlTestHandler(0)

	listings, err := h.parseListings(strings.NewReader(samplePage))
	require.NoError(t, err)
	require.Len(t, listings, 3) // empty-address row skipped

	assert.Equal(t, "123 Main St", listings[0].Address)
	assert.Equal(t, "Nashville", listings[0].City)
	assert.Equal(t, "9/15/2026", listings[0].SaleDate)
	assert.Equal(t, "10:00 AM", listings[0].SaleTime)
	assert.Equal(t, "Smith & Assoc.", listings[0].Firm)
	assert.Equal(t, "tn_ledger", listings[0].Source)
	assert.Equal(t, "Davidson", listings[0].County)

	// Short rows still parse the columns they have.
	assert.Equal(t, "789 Elm Dr", listings[2].Address)
	assert.Empty(t, listings[2].SaleTime)
	assert.Empty(t, listings[2].Firm)
}

func TestParseListingsMaxListings(t *testing.T) {
	h := htmlTestHandler(1)

	listings, err := h.parseListings(strings.NewReader(samplePage))
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestParseListingsEmptyPage(t *testing.T) {
	h := htmlTestHandler(0)

	listings, err := h.parseListings(strings.NewReader("<html><body><p>No sales scheduled.</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, listings)
}
