package scraper

import (
	"context"
	"errors"

	"leadpipe/config"
	"leadpipe/httputil"
	"leadpipe/models"
)

var errEmptyAddress = errors.New("listing has no address")

// ScrapeResult carries the parsed listings plus the raw payload the parse
// came from, for optional archival.
type ScrapeResult struct {
	Listings []*models.LegacyListing
	Raw      []byte
}

type Handler interface {
	ID() string
	Scrape(ctx context.Context) (*ScrapeResult, error)
}

// NewHandler picks the handler for a source config. Apify is a hosted API,
// so it gets the API client; everything else scrapes the target directly.
func NewHandler(srcCfg *config.SourceConfig, apifyCfg config.ApifyConfig, clients *httputil.Clients) Handler {
	if clients == nil {
		clients = httputil.NewClients()
	}
	switch srcCfg.Handler {
	case "apify":
		return NewApifyHandler(srcCfg, apifyCfg, clients.API)
	default:
		return NewHTMLHandler(srcCfg, clients.Scraping)
	}
}
