package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/config"
	"leadpipe/httputil"
)

func TestNewHandlerClientSelection(t *testing.T) {
	clients := httputil.NewClients()

	h := NewHandler(&config.SourceConfig{ID: "tn_ledger", Handler: "html"}, config.ApifyConfig{}, clients)
	html, ok := h.(*HTMLHandler)
	require.True(t, ok)
	assert.Same(t, clients.Scraping, html.client)

	h = NewHandler(&config.SourceConfig{ID: "wilson_county", Handler: "apify"}, config.ApifyConfig{}, clients)
	apify, ok := h.(*ApifyHandler)
	require.True(t, ok)
	assert.Same(t, clients.API, apify.client)
}

func TestNewHandlerNilClients(t *testing.T) {
	h := NewHandler(&config.SourceConfig{ID: "tn_ledger", Handler: "html"}, config.ApifyConfig{}, nil)
	html, ok := h.(*HTMLHandler)
	require.True(t, ok)
	assert.NotNil(t, html.client)
}
