package httputil

import (
	"net/http"
	"time"
)

// Clients separates the HTTP client used against scrape targets (short
// timeout, no redirect following so delisted pages are detected) from the
// one used against hosted APIs (Apify, skip trace, OpenAI, CRM).
type Clients struct {
	Scraping *http.Client
	API      *http.Client
}

func NewClients() *Clients {
	scraping := &http.Client{
		Timeout: 15 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Clients{
		Scraping: scraping,
		API:      &http.Client{Timeout: 60 * time.Second},
	}
}
